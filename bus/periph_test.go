package bus

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
)

// event is one observed bus action: a CS level change or a Tx.
type event struct {
	cs    gpio.Level
	isCS  bool
	w     []byte
	rLen  int
	count int // packets in a TxPackets call
	keep  []bool
}

// MockSPI is a periph spi.Conn that logs calls and answers reads with a
// fixed pattern.
type MockSPI struct {
	log    *[]event
	answer byte
	txErr  error
}

func (m *MockSPI) String() string { return "mockspi" }
func (m *MockSPI) Duplex() conn.Duplex { return conn.Full }
func (m *MockSPI) Tx(w, r []byte) error {
	if m.txErr != nil {
		return m.txErr
	}
	for i := range r {
		r[i] = m.answer
	}
	*m.log = append(*m.log, event{w: append([]byte(nil), w...), rLen: len(r)})
	return nil
}

func (m *MockSPI) TxPackets(p []spi.Packet) error {
	if m.txErr != nil {
		return m.txErr
	}
	e := event{count: len(p)}
	for _, pkt := range p {
		e.w = append(e.w, pkt.W...)
		e.rLen += len(pkt.R)
		e.keep = append(e.keep, pkt.KeepCS)
		for i := range pkt.R {
			pkt.R[i] = m.answer
		}
	}
	*m.log = append(*m.log, e)
	return nil
}

// MockPin records chip-select transitions into the shared log.
type MockPin struct {
	*gpiotest.Pin
	log *[]event
}

func (p *MockPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, event{isCS: true, cs: l})
	return p.Pin.Out(l)
}

func newPinned() (*Periph, *[]event, *MockSPI) {
	log := &[]event{}
	s := &MockSPI{log: log, answer: 0x5A}
	pin := &MockPin{Pin: &gpiotest.Pin{N: "CS", L: gpio.High}, log: log}
	return NewPeriph(s, pin), log, s
}

func TestPeriphPinSingleStream(t *testing.T) {
	p, log, _ := newPinned()

	rx := make([]byte, 3)
	if err := p.Transfer([]byte{0x03, 0, 0, 0}, rx, WakeUp, End); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if !bytes.Equal(rx, []byte{0x5A, 0x5A, 0x5A}) {
		t.Errorf("rx = % X", rx)
	}

	ev := *log
	if len(ev) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(ev), ev)
	}
	if !ev[0].isCS || ev[0].cs != gpio.Low {
		t.Errorf("event 0 should select the chip: %+v", ev[0])
	}
	if !bytes.Equal(ev[1].w, []byte{0x03, 0, 0, 0}) || ev[1].rLen != 0 {
		t.Errorf("event 1 should be the address phase: %+v", ev[1])
	}
	if ev[2].rLen != 3 {
		t.Errorf("event 2 should read 3 bytes: %+v", ev[2])
	}
	if !ev[3].isCS || ev[3].cs != gpio.High {
		t.Errorf("event 3 should deselect the chip: %+v", ev[3])
	}
}

func TestPeriphPinHoldAcrossStreams(t *testing.T) {
	p, log, _ := newPinned()

	if err := p.Transfer([]byte{0x02, 0, 0, 0}, nil, WakeUp, Hold); err != nil {
		t.Fatalf("address phase: %v", err)
	}
	if err := p.Transfer([]byte{0xAA, 0xBB}, nil, WakeUp, End); err != nil {
		t.Fatalf("data phase: %v", err)
	}

	var cs []gpio.Level
	for _, e := range *log {
		if e.isCS {
			cs = append(cs, e.cs)
		}
	}
	if len(cs) != 2 || cs[0] != gpio.Low || cs[1] != gpio.High {
		t.Errorf("chip select transitions = %v, want [Low High]", cs)
	}
}

func TestPeriphPinErrorDeselects(t *testing.T) {
	p, log, s := newPinned()
	s.txErr = errors.New("fifo overrun")

	err := p.Transfer([]byte{0x05}, make([]byte, 1), WakeUp, End)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, s.txErr) {
		t.Errorf("error should wrap the tx error: %v", err)
	}
	ev := *log
	last := ev[len(ev)-1]
	if !last.isCS || last.cs != gpio.High {
		t.Errorf("chip should be deselected after an error, last event %+v", last)
	}
}

func TestPeriphPacketsQueueUntilEnd(t *testing.T) {
	log := &[]event{}
	s := &MockSPI{log: log, answer: 0x11}
	p := NewPeriph(s, nil)

	if err := p.Transfer([]byte{0x02, 0x00, 0x01, 0x00}, nil, WakeUp, Hold); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if len(*log) != 0 {
		t.Fatalf("nothing should be sent before End, got %+v", *log)
	}
	if err := p.Transfer([]byte{0xAA}, nil, WakeUp, End); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if len(*log) != 1 {
		t.Fatalf("want one TxPackets call, got %d", len(*log))
	}
	e := (*log)[0]
	if e.count != 2 {
		t.Errorf("packets = %d, want 2", e.count)
	}
	if !bytes.Equal(e.w, []byte{0x02, 0x00, 0x01, 0x00, 0xAA}) {
		t.Errorf("w = % X", e.w)
	}
	if len(e.keep) != 2 || !e.keep[0] || e.keep[1] {
		t.Errorf("KeepCS = %v, want [true false]", e.keep)
	}
}

func TestPeriphPacketsReadFilledAtEnd(t *testing.T) {
	log := &[]event{}
	s := &MockSPI{log: log, answer: 0x42}
	p := NewPeriph(s, nil)

	rx := make([]byte, 1)
	if err := p.Transfer([]byte{0x05}, rx, WakeUp, End); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if rx[0] != 0x42 {
		t.Errorf("rx = 0x%02X, want 0x42", rx[0])
	}
}

func TestPeriphRejectsMarkers(t *testing.T) {
	p, _, _ := newPinned()

	if err := p.Transfer([]byte{0x06}, nil, End, End); !errors.Is(err, ErrMarker) {
		t.Errorf("acquire End: got %v, want ErrMarker", err)
	}
	if err := p.Transfer([]byte{0x06}, nil, WakeUp, WakeUp); !errors.Is(err, ErrMarker) {
		t.Errorf("release WakeUp: got %v, want ErrMarker", err)
	}
}

func TestMarkerString(t *testing.T) {
	for m, want := range map[Marker]string{WakeUp: "wake-up", Hold: "hold", End: "end", 9: "Marker(9)"} {
		if got := m.String(); got != want {
			t.Errorf("Marker(%d).String() = %q, want %q", uint8(m), got, want)
		}
	}
}
