package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/fram"
	"github.com/msrathod/spi-fram/profile"
)

// Drivers understood by openConn.
const (
	driverSpidev = "spidev"
	driverPeriph = "periph"
	driverFTDI   = "ftdi"
	driverSim    = "sim"
)

// Config is the framctl.yaml file.
//
//	driver: spidev
//	profile: FM25V20A
//	spidev:
//	  device: /dev/spidev0.0
//	  mode: 0
//	  speed_hz: 10000000
//	poll:
//	  limit: 1000
//	  timeout_ms: 10
type Config struct {
	Driver       string       `yaml:"driver"`
	Profile      string       `yaml:"profile"`
	ProfilesFile string       `yaml:"profiles_file"`
	Spidev       SpidevConfig `yaml:"spidev"`
	Periph       PeriphConfig `yaml:"periph"`
	FTDI         FTDIConfig   `yaml:"ftdi"`
	Poll         PollConfig   `yaml:"poll"`

	Verify          bool `yaml:"verify"`
	Strict          bool `yaml:"strict"`
	ProtectionCheck bool `yaml:"protection_check"`
	Verbose         bool `yaml:"verbose"`
}

// SpidevConfig selects a Linux spidev device. FM25V parts run in SPI mode 0
// or 3.
type SpidevConfig struct {
	Device  string `yaml:"device"`
	Mode    uint32 `yaml:"mode"`
	SpeedHz uint32 `yaml:"speed_hz"`
}

// PeriphConfig selects a periph.io SPI port and an optional GPIO chip select.
type PeriphConfig struct {
	// Port is a spireg name, e.g. "SPI0.0"; empty selects the first port
	Port    string `yaml:"port"`
	CS      string `yaml:"cs"`
	SpeedHz uint32 `yaml:"speed_hz"`
}

// FTDIConfig selects the SPI port of the first FT232H found.
type FTDIConfig struct {
	// CS is the FT232H pin used as chip select, D3 to D7
	CS      string `yaml:"cs"`
	SpeedHz uint32 `yaml:"speed_hz"`
}

// PollConfig bounds the write enable latch poll in attempts and
// milliseconds. Zero disables a bound.
type PollConfig struct {
	Limit      int `yaml:"limit"`
	IntervalMs int `yaml:"interval_ms"`
	TimeoutMs  int `yaml:"timeout_ms"`
}

func defaultConfig() Config {
	return Config{
		Driver:  driverSpidev,
		Profile: profile.Default.Name,
		Spidev: SpidevConfig{
			Device: "/dev/spidev0.0",
		},
		FTDI: FTDIConfig{
			CS: "D3",
		},
		Poll: PollConfig{
			Limit: 1000,
		},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error
// when optional is set.
func loadConfig(path string, optional bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks the config. It does not touch hardware.
func (c *Config) Validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case driverSpidev:
		if c.Spidev.Device == "" {
			return fmt.Errorf("spidev.device is required")
		}
		if m := c.Spidev.Mode; m != bus.SPIMode0 && m != bus.SPIMode3 {
			return fmt.Errorf("spidev.mode must be %d or %d, got %d", bus.SPIMode0, bus.SPIMode3, m)
		}
	case driverPeriph, driverSim:
	case driverFTDI:
		if _, ok := ftdiPins[strings.ToUpper(c.FTDI.CS)]; !ok && c.FTDI.CS != "" {
			return fmt.Errorf("ftdi.cs must be one of D3-D7, got %q", c.FTDI.CS)
		}
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}

	if c.Poll.Limit < 0 || c.Poll.IntervalMs < 0 || c.Poll.TimeoutMs < 0 {
		return fmt.Errorf("poll settings must not be negative")
	}
	return nil
}

// resolveProfile returns the selected profile from the profiles file or the
// built-in set.
func (c *Config) resolveProfile() (profile.Profile, error) {
	var set *profile.Set
	if c.ProfilesFile != "" {
		s, err := profile.Parse(c.ProfilesFile)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("%s: %w", c.ProfilesFile, err)
		}
		set = s
	}
	return set.Lookup(c.Profile)
}

// options returns the driver options selected by the config.
func (c *Config) options(logger fram.Logger) []fram.Option {
	opts := []fram.Option{
		fram.WithPollLimit(c.Poll.Limit),
		fram.WithPollInterval(time.Duration(c.Poll.IntervalMs) * time.Millisecond),
		fram.WithPollTimeout(time.Duration(c.Poll.TimeoutMs) * time.Millisecond),
		fram.WithVerifyAfterWrite(c.Verify),
		fram.WithStrictBounds(c.Strict),
		fram.WithProtectionCheck(c.ProtectionCheck),
	}
	if logger != nil {
		opts = append(opts, fram.WithLogger(logger))
	}
	return opts
}
