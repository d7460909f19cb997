package bus

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultSpeed is the clock used by ConnectPeriph when none is given. The
// FM25V20A accepts up to 40MHz; 10MHz is safe on long jumper wires.
const DefaultSpeed = 10 * physic.MegaHertz

// Periph is a Conn on top of a periph.io SPI connection.
//
// With a chip-select pin the pin is driven by hand around each transaction
// and every stream is sent with its own Tx call. Without a pin, streams are
// queued until End and sent as one TxPackets call with KeepCS set between
// packets, so the controller's native chip select stays asserted.
type Periph struct {
	conn spi.Conn
	cs   gpio.PinOut

	// Dummy is clocked out while inbound bytes are read.
	Dummy byte

	selected bool
	pending  []spi.Packet
}

// NewPeriph returns a Periph for c. cs may be nil to use the controller's
// chip select.
func NewPeriph(c spi.Conn, cs gpio.PinOut) *Periph {
	if c == nil {
		panic("spi connection cannot be nil")
	}
	return &Periph{conn: c, cs: cs}
}

// ConnectPeriph connects port in SPI mode 0 with 8-bit words and returns a
// Periph using cs. A zero speed selects DefaultSpeed.
func ConnectPeriph(port spi.Port, speed physic.Frequency, cs gpio.PinOut) (*Periph, error) {
	if speed == 0 {
		speed = DefaultSpeed
	}
	c, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("bus: connect %s: %w", port, err)
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("bus: deselect %s: %w", cs, err)
		}
	}
	return NewPeriph(c, cs), nil
}

func (p *Periph) String() string {
	if p.cs == nil {
		return p.conn.String()
	}
	return fmt.Sprintf("%s (cs %s)", p.conn, p.cs)
}

// Transfer implements Conn.
func (p *Periph) Transfer(w, r []byte, acquire, release Marker) error {
	if err := CheckMarkers(acquire, release); err != nil {
		return err
	}
	if p.cs == nil {
		return p.queue(w, r, release)
	}
	return p.tx(w, r, release)
}

func (p *Periph) tx(w, r []byte, release Marker) error {
	if !p.selected {
		if err := p.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: select: %w", err)
		}
		p.selected = true
	}

	if len(w) > 0 {
		if err := p.conn.Tx(w, nil); err != nil {
			p.deselect()
			return fmt.Errorf("bus: tx: %w", err)
		}
	}
	if len(r) > 0 {
		if err := p.conn.Tx(p.dummy(len(r)), r); err != nil {
			p.deselect()
			return fmt.Errorf("bus: rx: %w", err)
		}
	}

	if release == End {
		if err := p.deselect(); err != nil {
			return fmt.Errorf("bus: deselect: %w", err)
		}
	}
	return nil
}

func (p *Periph) deselect() error {
	p.selected = false
	return p.cs.Out(gpio.High)
}

func (p *Periph) queue(w, r []byte, release Marker) error {
	if len(w) > 0 {
		p.pending = append(p.pending, spi.Packet{W: append([]byte(nil), w...), KeepCS: true})
	}
	if len(r) > 0 {
		p.pending = append(p.pending, spi.Packet{W: p.dummy(len(r)), R: r, KeepCS: true})
	}
	if release != End || len(p.pending) == 0 {
		return nil
	}

	pkts := p.pending
	p.pending = nil
	pkts[len(pkts)-1].KeepCS = false
	if err := p.conn.TxPackets(pkts); err != nil {
		return fmt.Errorf("bus: tx packets: %w", err)
	}
	return nil
}

func (p *Periph) dummy(n int) []byte {
	b := make([]byte, n)
	if p.Dummy != 0 {
		for i := range b {
			b[i] = p.Dummy
		}
	}
	return b
}
