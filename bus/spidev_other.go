//go:build !linux

package bus

import (
	"errors"
	"runtime"
)

var errNoSpidev = errors.New("bus: spidev is only supported on linux, not " + runtime.GOOS)

// Spidev is unavailable outside Linux.
type Spidev struct{}

// OpenSpidev always fails outside Linux.
func OpenSpidev(dev string, cfg SpidevConfig) (*Spidev, error) {
	return nil, errNoSpidev
}

func (s *Spidev) String() string { return "spidev" }

// Close implements io.Closer.
func (s *Spidev) Close() error { return nil }

// Transfer implements Conn.
func (s *Spidev) Transfer(w, r []byte, acquire, release Marker) error {
	return errNoSpidev
}
