// Package bus defines the byte-stream transport the FRAM driver talks through,
// and provides implementations on top of periph.io and Linux spidev.
//
// A transaction is one chip-select assertion. It is made of one or more
// streams. Each stream clocks its outbound bytes first and then clocks in
// the requested number of inbound bytes. The release marker of a stream
// decides whether the chip stays selected for the next stream (Hold) or is
// deselected (End).
//
//	// READ: one stream, address phase then data phase
//	c.Transfer([]byte{0x03, a2, a1, a0}, data, bus.WakeUp, bus.End)
//
//	// WRITE: two streams, one transaction
//	c.Transfer([]byte{0x02, a2, a1, a0}, nil, bus.WakeUp, bus.Hold)
//	c.Transfer(payload, nil, bus.WakeUp, bus.End)
package bus

import (
	"errors"
	"fmt"
)

// Marker configures the controller before or after a stream.
type Marker uint8

const (
	// WakeUp selects the chip if it is not selected yet.
	WakeUp Marker = iota

	// Hold keeps the chip selected so a following stream continues the
	// same transaction.
	Hold

	// End deselects the chip and terminates the transaction.
	End
)

func (m Marker) String() string {
	switch m {
	case WakeUp:
		return "wake-up"
	case Hold:
		return "hold"
	case End:
		return "end"
	default:
		return fmt.Sprintf("Marker(%d)", uint8(m))
	}
}

// Conn is a byte-stream transport to a single SPI device.
//
// Transfer blocks until the stream has been clocked. Inbound bytes are
// guaranteed to be in r once the Transfer carrying release End returns;
// implementations that queue a transaction may fill r later than the
// Transfer call that passed it.
type Conn interface {
	Transfer(w, r []byte, acquire, release Marker) error
}

// ErrMarker is returned for an acquire or release marker that is not valid
// in its position.
var ErrMarker = errors.New("bus: invalid marker")

// CheckMarkers validates the marker pair of a Transfer call. Conn
// implementations call it before touching the bus.
func CheckMarkers(acquire, release Marker) error {
	if acquire != WakeUp {
		return fmt.Errorf("%w: acquire %s", ErrMarker, acquire)
	}
	if release != Hold && release != End {
		return fmt.Errorf("%w: release %s", ErrMarker, release)
	}
	return nil
}
