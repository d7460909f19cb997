package protocol

import "fmt"

// Status is the raw value of the FRAM status register.
type Status byte

// WriteProtectEnabled reports whether WPEN is set.
func (s Status) WriteProtectEnabled() bool { return s&StatusWPEN != 0 }

// WriteEnabled reports whether the write enable latch is set.
func (s Status) WriteEnabled() bool { return s&StatusWEL != 0 }

// Level returns the block protect level encoded in BP1 and BP0.
func (s Status) Level() ProtectionLevel {
	return ProtectionLevel((s & StatusBPMask) >> StatusBPShift)
}

// Persistent returns the bits that survive a write cycle and a power cycle
// (WPEN, BP1, BP0).
func (s Status) Persistent() Status { return s & StatusWritableMask }

func (s Status) String() string {
	return fmt.Sprintf("0x%02X (wpen=%t level=%s wel=%t)",
		byte(s), s.WriteProtectEnabled(), s.Level(), s.WriteEnabled())
}

// ProtectionLevel selects which part of the array is write protected.
//
//	(BP1, BP0)
//	  0    0   none
//	  0    1   upper 1/4
//	  1    0   upper 1/2
//	  1    1   all
type ProtectionLevel byte

const (
	// ProtectNone leaves the whole array writable
	ProtectNone ProtectionLevel = 0x00

	// ProtectUpperQuarter protects the upper 1/4 of the array
	ProtectUpperQuarter ProtectionLevel = 0x01

	// ProtectUpperHalf protects the upper 1/2 of the array
	ProtectUpperHalf ProtectionLevel = 0x02

	// ProtectAll protects the whole array
	ProtectAll ProtectionLevel = 0x03
)

// Valid reports whether l fits in the two block protect bits.
func (l ProtectionLevel) Valid() bool { return l <= ProtectAll }

// Status returns the status register value selecting l with every other
// bit clear.
func (l ProtectionLevel) Status() Status {
	return Status(l<<StatusBPShift) & StatusBPMask
}

func (l ProtectionLevel) String() string {
	switch l {
	case ProtectNone:
		return "none"
	case ProtectUpperQuarter:
		return "upper-quarter"
	case ProtectUpperHalf:
		return "upper-half"
	case ProtectAll:
		return "all"
	default:
		return fmt.Sprintf("ProtectionLevel(%d)", byte(l))
	}
}

// ParseProtectionLevel maps a level name as produced by String back to its
// value. Aliases "1/4" and "1/2" are accepted.
func ParseProtectionLevel(s string) (ProtectionLevel, error) {
	switch s {
	case "none", "0":
		return ProtectNone, nil
	case "upper-quarter", "quarter", "1/4", "1":
		return ProtectUpperQuarter, nil
	case "upper-half", "half", "1/2", "2":
		return ProtectUpperHalf, nil
	case "all", "3":
		return ProtectAll, nil
	default:
		return 0, fmt.Errorf("unknown protection level %q", s)
	}
}

// DeviceID contains the decoded RDID response.
type DeviceID struct {
	// Raw is the unmodified 9-byte response
	Raw [DeviceIDSize]byte

	// Continuation is the number of 0x7F JEDEC continuation bytes
	Continuation int

	// Manufacturer is the JEDEC manufacturer code following the continuation bytes
	Manufacturer byte

	// Family is the product family (bits 7-5 of the first product byte)
	Family byte

	// Density is the density code (bits 4-0 of the first product byte)
	Density byte

	// SubType is the sub-type (bits 7-6 of the second product byte)
	SubType byte

	// Revision is the device revision (bits 5-3 of the second product byte)
	Revision byte
}

// ProductID returns the two product bytes as a big-endian value.
func (d *DeviceID) ProductID() uint16 {
	return uint16(d.Raw[DeviceIDSize-2])<<8 | uint16(d.Raw[DeviceIDSize-1])
}

func (d *DeviceID) String() string {
	return fmt.Sprintf("manufacturer=0x%02X product=0x%04X family=%d density=%d rev=%d",
		d.Manufacturer, d.ProductID(), d.Family, d.Density, d.Revision)
}
