// Package framsim simulates an FM25V-family SPI FRAM behind a bus.Conn.
//
// The simulated chip decodes the same byte streams a real part does: the
// write enable latch is set by WREN, cleared by WRDI and auto-cleared at the
// end of every WRITE or WRSR transaction; WPEN and the block protect bits
// persist; bit 6 of the status register always reads back as 1; writes into
// a protected block are ignored; READ and WRITE wrap at the end of the
// array. Every transaction is recorded so tests can assert exact byte
// sequences.
//
// A Device is not safe for concurrent use.
package framsim

import (
	"bytes"
	"fmt"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/profile"
	"github.com/msrathod/spi-fram/protocol"
)

// Stream is one Transfer call as seen by the device.
type Stream struct {
	// W is a copy of the outbound bytes
	W []byte

	// R is the number of inbound bytes clocked
	R int

	// Release is the release marker of the call
	Release bus.Marker
}

// Transaction is every stream between chip select and deselect.
type Transaction struct {
	Streams []Stream
}

// Out returns the concatenated outbound bytes.
func (t Transaction) Out() []byte {
	var b []byte
	for _, s := range t.Streams {
		b = append(b, s.W...)
	}
	return b
}

// Opcode returns the first outbound byte, or 0 for an empty transaction.
func (t Transaction) Opcode() byte {
	for _, s := range t.Streams {
		if len(s.W) > 0 {
			return s.W[0]
		}
	}
	return 0
}

// In returns the number of inbound bytes clocked.
func (t Transaction) In() int {
	n := 0
	for _, s := range t.Streams {
		n += s.R
	}
	return n
}

// Device is a simulated FRAM chip.
type Device struct {
	profile profile.Profile
	mem     []byte
	status  byte
	id      [protocol.DeviceIDSize]byte
	asleep  bool

	selected bool
	cmd      []byte
	dataOff  uint32
	cur      Transaction

	// Transactions holds every completed transaction in order.
	Transactions []Transaction

	// StuckLatch makes WREN leave the write enable latch clear.
	StuckLatch bool

	// StuckLatchSet makes WRDI leave the write enable latch set.
	StuckLatchSet bool

	// WriteProtectPin models the /WP pin held low. With WPEN set it blocks
	// WRSR.
	WriteProtectPin bool

	// Err, when non-nil, is returned from every Transfer without touching
	// the device.
	Err error
}

// New returns a blank device for p. Memory is zero-filled and the status
// register has no protection.
func New(p profile.Profile) *Device {
	d := &Device{
		profile: p,
		mem:     make([]byte, p.Capacity),
	}
	if len(p.DeviceID) == protocol.DeviceIDSize {
		copy(d.id[:], p.DeviceID)
	} else {
		copy(d.id[:], profile.FM25V20A.DeviceID)
	}
	return d
}

// Transfer implements bus.Conn.
func (d *Device) Transfer(w, r []byte, acquire, release bus.Marker) error {
	if d.Err != nil {
		return d.Err
	}
	if err := bus.CheckMarkers(acquire, release); err != nil {
		return err
	}

	if !d.selected {
		d.selected = true
		d.asleep = false
		d.cmd = d.cmd[:0]
		d.dataOff = 0
		d.cur = Transaction{}
	}

	d.cmd = append(d.cmd, w...)
	if len(r) > 0 {
		d.respond(r)
	}
	d.cur.Streams = append(d.cur.Streams, Stream{
		W:       append([]byte(nil), w...),
		R:       len(r),
		Release: release,
	})

	if release == bus.End {
		d.execute()
		d.Transactions = append(d.Transactions, d.cur)
		d.selected = false
	}
	return nil
}

// respond fills r with what the device drives on SO.
func (d *Device) respond(r []byte) {
	if len(d.cmd) == 0 {
		fill(r, 0xFF)
		return
	}

	switch d.cmd[0] {
	case protocol.CmdReadStatus:
		fill(r, d.Status())

	case protocol.CmdRead:
		if len(d.cmd) < protocol.AddressStreamSize {
			fill(r, 0xFF)
			return
		}
		addr := d.address()
		for i := range r {
			r[i] = d.mem[d.wrap(addr+d.dataOff)]
			d.dataOff++
		}

	case protocol.CmdReadID:
		for i := range r {
			if int(d.dataOff) < len(d.id) {
				r[i] = d.id[d.dataOff]
			} else {
				r[i] = 0xFF
			}
			d.dataOff++
		}

	default:
		fill(r, 0xFF)
	}
}

// execute applies the side effects of the transaction when chip select
// rises.
func (d *Device) execute() {
	if len(d.cmd) == 0 {
		return
	}

	switch d.cmd[0] {
	case protocol.CmdWriteEnable:
		if !d.StuckLatch {
			d.status |= protocol.StatusWEL
		}

	case protocol.CmdWriteDisable:
		if !d.StuckLatchSet {
			d.status &^= protocol.StatusWEL
		}

	case protocol.CmdWriteStatus:
		if len(d.cmd) < 2 || d.status&protocol.StatusWEL == 0 {
			return
		}
		if !(d.WriteProtectPin && d.status&protocol.StatusWPEN != 0) {
			d.status = d.cmd[1] & protocol.StatusWritableMask
		}
		d.status &^= protocol.StatusWEL

	case protocol.CmdWrite:
		if len(d.cmd) < protocol.AddressStreamSize || d.status&protocol.StatusWEL == 0 {
			return
		}
		addr := d.address()
		start, end := d.profile.ProtectedRange(protocol.Status(d.status).Level())
		for i, b := range d.cmd[protocol.AddressStreamSize:] {
			a := d.wrap(addr + uint32(i))
			if a >= start && a < end {
				continue
			}
			d.mem[a] = b
		}
		d.status &^= protocol.StatusWEL

	case protocol.CmdSleep:
		d.asleep = true
	}
}

func (d *Device) address() uint32 {
	a := uint32(d.cmd[1])<<16 | uint32(d.cmd[2])<<8 | uint32(d.cmd[3])
	return a & d.profile.AddressMask()
}

func (d *Device) wrap(a uint32) uint32 {
	return a % d.profile.Capacity
}

// Status returns the status register as the device reports it.
func (d *Device) Status() byte {
	return d.status | protocol.StatusReserved
}

// SetStatus overwrites the status register, bypassing the latch protocol.
func (d *Device) SetStatus(s byte) {
	d.status = s & (protocol.StatusWritableMask | protocol.StatusWEL)
}

// Asleep reports whether the last transaction was SLEEP.
func (d *Device) Asleep() bool { return d.asleep }

// Peek returns a copy of n bytes of the array starting at addr, wrapping at
// the end.
func (d *Device) Peek(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = d.mem[d.wrap(addr+uint32(i))]
	}
	return out
}

// Poke writes data into the array starting at addr, ignoring protection.
func (d *Device) Poke(addr uint32, data []byte) {
	for i, b := range data {
		d.mem[d.wrap(addr+uint32(i))] = b
	}
}

// Reset forgets recorded transactions.
func (d *Device) Reset() {
	d.Transactions = nil
}

func (d *Device) String() string {
	return "framsim " + d.profile.Name
}

// Dump returns a readable listing of the recorded transactions.
func (d *Device) Dump() string {
	var b bytes.Buffer
	for i, t := range d.Transactions {
		fmt.Fprintf(&b, "%3d:", i)
		for _, s := range t.Streams {
			fmt.Fprintf(&b, " [% X r%d %s]", s.W, s.R, s.Release)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
