package fram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/profile"
	"github.com/msrathod/spi-fram/protocol"
)

// Device drives one FM25V-family FRAM over a bus.Conn.
//
// Device holds no state between calls beyond its configuration; every
// decision that depends on the status register re-reads it. A Device is
// not safe for concurrent use: the caller owns the bus for the duration of
// each call.
type Device struct {
	conn    bus.Conn
	profile profile.Profile
	config  Config
}

// New creates a Device for the part described by p.
//
// Example:
//
//	conn, _ := bus.OpenSpidev("/dev/spidev0.0", bus.SpidevConfig{})
//	dev, err := fram.New(conn, profile.FM25V20A,
//	    fram.WithPollTimeout(10*time.Millisecond),
//	)
func New(conn bus.Conn, p profile.Profile, opts ...Option) (*Device, error) {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("fram: %w", err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Device{
		conn:    conn,
		profile: p,
		config:  cfg,
	}, nil
}

// Profile returns the device profile.
func (d *Device) Profile() profile.Profile {
	return d.profile
}

// Read fills p with the array contents starting at addr.
//
// addr must be below the profile capacity. The length of p is not checked
// unless strict bounds are enabled; the device wraps to address 0 past the
// end of the array. Address and data phases share one transaction.
func (d *Device) Read(ctx context.Context, addr uint32, p []byte) error {
	if err := d.checkRange("read", addr, len(p)); err != nil {
		return err
	}
	if err := begin(ctx, "read"); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	return d.read(addr, p)
}

func (d *Device) read(addr uint32, p []byte) error {
	cmd := protocol.BuildReadCmd(addr, d.profile.AddressMask())
	return d.tx("read", cmd, p, bus.End)
}

// Write stores p in the array starting at addr.
//
// The sequence is: write enable with latch confirmation, the address phase
// with the chip held selected, then the payload phase which deselects the
// chip. The device clears the write enable latch at the end of the
// transaction.
//
// Example:
//
//	err := dev.Write(ctx, 0x0000, []byte{0xAA, 0xBB})
func (d *Device) Write(ctx context.Context, addr uint32, p []byte) error {
	if err := d.checkRange("write", addr, len(p)); err != nil {
		return err
	}
	if err := begin(ctx, "write"); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	if d.config.ProtectionCheck {
		s, err := d.readStatus()
		if err != nil {
			return err
		}
		if level := s.Level(); d.profile.Protects(level, addr, len(p)) {
			d.logDebug("write rejected", "addr", hexAddr(addr), "len", len(p), "level", level.String())
			return &ProtectedError{Address: addr, Length: len(p), Level: level}
		}
	}

	if err := d.setLatch(ctx, true); err != nil {
		return err
	}

	cmd := protocol.BuildWriteCmd(addr, d.profile.AddressMask())
	if err := d.tx("write", cmd, nil, bus.Hold); err != nil {
		return err
	}
	if err := d.tx("write", p, nil, bus.End); err != nil {
		return err
	}

	d.logDebug("write", "addr", hexAddr(addr), "len", len(p))

	if d.config.VerifyAfterWrite {
		return d.verify(addr, p)
	}
	return nil
}

// verify reads back len(p) bytes at addr and compares them with p.
func (d *Device) verify(addr uint32, p []byte) error {
	got := make([]byte, len(p))
	if err := d.read(addr, got); err != nil {
		return err
	}
	if bytes.Equal(got, p) {
		return nil
	}
	for i := range p {
		if got[i] != p[i] {
			a := (addr + uint32(i)) % d.profile.Capacity
			d.logError("verify mismatch", "addr", hexAddr(a))
			return &VerifyError{Address: a, Expected: p[i], Actual: got[i]}
		}
	}
	return nil
}

// Checksum reads n bytes starting at addr in one READ transaction and
// returns their CRC-16-CCITT. n may not exceed the array capacity.
func (d *Device) Checksum(ctx context.Context, addr uint32, n int) (uint16, error) {
	if n < 0 {
		return 0, fmt.Errorf("fram: checksum: negative length %d", n)
	}
	if err := d.checkRange("checksum", addr, n); err != nil {
		return 0, err
	}
	if uint64(n) > uint64(d.profile.Capacity) {
		return 0, &OverflowError{Op: "checksum", Address: addr, Length: n, Capacity: d.profile.Capacity}
	}
	buf := make([]byte, n)
	if err := d.Read(ctx, addr, buf); err != nil {
		return 0, err
	}
	return protocol.CRC16(buf), nil
}

// ReadID reads the 9-byte identification block. Only DeviceIDSize bytes
// are clocked in, independent of what the caller does with the result.
func (d *Device) ReadID(ctx context.Context) (*protocol.DeviceID, error) {
	if err := begin(ctx, "read id"); err != nil {
		return nil, err
	}

	var buf [protocol.DeviceIDSize]byte
	if err := d.tx("read id", protocol.BuildOpcodeCmd(protocol.CmdReadID), buf[:], bus.End); err != nil {
		return nil, err
	}

	id, err := protocol.ParseDeviceID(buf[:])
	if err != nil {
		return nil, fmt.Errorf("fram: read id: %w", err)
	}
	return id, nil
}

// VerifyID reads the identification block and compares it with the profile.
// Profiles without a device ID always match.
func (d *Device) VerifyID(ctx context.Context) (*protocol.DeviceID, error) {
	id, err := d.ReadID(ctx)
	if err != nil {
		return nil, err
	}
	if len(d.profile.DeviceID) == 0 || bytes.Equal(id.Raw[:], d.profile.DeviceID) {
		return id, nil
	}
	return id, &DeviceMismatchError{
		Profile:  d.profile.Name,
		Expected: append([]byte(nil), d.profile.DeviceID...),
		Actual:   append([]byte(nil), id.Raw[:]...),
	}
}

// Sleep puts the device into its low-power sleep mode. The next chip
// select wakes it up.
func (d *Device) Sleep(ctx context.Context) error {
	if err := begin(ctx, "sleep"); err != nil {
		return err
	}
	if err := d.tx("sleep", protocol.BuildOpcodeCmd(protocol.CmdSleep), nil, bus.End); err != nil {
		return err
	}
	d.logDebug("sleep")
	return nil
}

// checkRange validates addr, and with strict bounds the whole transfer,
// against the profile capacity.
func (d *Device) checkRange(op string, addr uint32, n int) error {
	if !d.profile.Contains(addr) {
		d.logDebug("address rejected", "op", op, "addr", hexAddr(addr))
		return &AddressError{Op: op, Address: addr, Capacity: d.profile.Capacity}
	}
	if d.config.StrictBounds && uint64(addr)+uint64(n) > uint64(d.profile.Capacity) {
		d.logDebug("transfer rejected", "op", op, "addr", hexAddr(addr), "len", n)
		return &OverflowError{Op: op, Address: addr, Length: n, Capacity: d.profile.Capacity}
	}
	return nil
}

// tx performs one stream and wraps transport errors.
func (d *Device) tx(op string, w, r []byte, release bus.Marker) error {
	if err := d.conn.Transfer(w, r, bus.WakeUp, release); err != nil {
		d.logError("transfer failed", "op", op, "error", err)
		return fmt.Errorf("fram: %s: %w", op, err)
	}
	return nil
}

// begin is checked once per operation, never between the streams of one
// transaction.
func begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fram: %s: %w", op, err)
	}
	return nil
}

func hexAddr(addr uint32) string {
	return fmt.Sprintf("0x%06X", addr)
}
