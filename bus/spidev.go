package bus

import "periph.io/x/conn/v3/physic"

// SPI mode flags for SpidevConfig.Mode.
const (
	CPHA uint32 = 1 << iota
	CPOL

	SPIMode0 = 0
	SPIMode3 = CPOL | CPHA
)

// SpidevConfig holds the settings applied by OpenSpidev.
type SpidevConfig struct {
	// Mode is the SPI mode; FM25V parts support mode 0 and mode 3
	Mode uint32

	// SpeedHz is the maximum clock; 0 selects DefaultSpeed
	SpeedHz uint32

	// BitsPerWord is the word size; 0 selects 8
	BitsPerWord uint8
}

func (c SpidevConfig) withDefaults() SpidevConfig {
	if c.SpeedHz == 0 {
		c.SpeedHz = uint32(DefaultSpeed / physic.Hertz)
	}
	if c.BitsPerWord == 0 {
		c.BitsPerWord = 8
	}
	return c
}
