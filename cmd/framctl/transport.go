package main

import (
	"fmt"
	"io"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/framsim"
	"github.com/msrathod/spi-fram/profile"
)

// ftdiPins maps the FT232H ADBUS pins usable as chip select.
var ftdiPins = map[string]func(*ftdi.FT232H) gpio.PinOut{
	"D3": func(f *ftdi.FT232H) gpio.PinOut { return f.D3 },
	"D4": func(f *ftdi.FT232H) gpio.PinOut { return f.D4 },
	"D5": func(f *ftdi.FT232H) gpio.PinOut { return f.D5 },
	"D6": func(f *ftdi.FT232H) gpio.PinOut { return f.D6 },
	"D7": func(f *ftdi.FT232H) gpio.PinOut { return f.D7 },
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openConn opens the transport selected by cfg. The returned closer
// releases it.
func openConn(cfg *Config, p profile.Profile) (bus.Conn, io.Closer, error) {
	switch cfg.Driver {
	case driverSpidev:
		s, err := bus.OpenSpidev(cfg.Spidev.Device, bus.SpidevConfig{
			Mode:    cfg.Spidev.Mode,
			SpeedHz: cfg.Spidev.SpeedHz,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case driverPeriph:
		return openPeriph(cfg.Periph)

	case driverFTDI:
		return openFTDI(cfg.FTDI)

	case driverSim:
		return framsim.New(p), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

func openPeriph(cfg PeriphConfig) (bus.Conn, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host initialization failed: %w", err)
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("open spi port %q: %w", cfg.Port, err)
	}

	var cs gpio.PinOut
	if cfg.CS != "" {
		pin := gpioreg.ByName(cfg.CS)
		if pin == nil {
			_ = port.Close()
			return nil, nil, fmt.Errorf("unknown gpio %q", cfg.CS)
		}
		cs = pin
	}

	c, err := bus.ConnectPeriph(port, hz(cfg.SpeedHz), cs)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}
	return c, port, nil
}

func openFTDI(cfg FTDIConfig) (bus.Conn, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host initialization failed: %w", err)
	}

	var ft *ftdi.FT232H
	for _, dev := range ftdi.All() {
		if f, ok := dev.(*ftdi.FT232H); ok {
			ft = f
			break
		}
	}
	if ft == nil {
		return nil, nil, fmt.Errorf("no FT232H device found")
	}

	port, err := ft.SPI()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get SPI port: %w", err)
	}

	var cs gpio.PinOut
	if pin, ok := ftdiPins[strings.ToUpper(cfg.CS)]; ok {
		cs = pin(ft)
	}

	c, err := bus.ConnectPeriph(port, hz(cfg.SpeedHz), cs)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}
	return c, port, nil
}

func hz(v uint32) physic.Frequency {
	return physic.Frequency(v) * physic.Hertz
}
