package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/msrathod/spi-fram/protocol"
)

// Profile describes one FRAM device variant.
type Profile struct {
	// Name is the part number, e.g. "FM25V20A"
	Name string `yaml:"name"`

	// Capacity is the array size in bytes
	Capacity uint32 `yaml:"capacity"`

	// AddressBits is the number of address bits the device decodes.
	// The remaining bits of the 24-bit address field are sent as zero.
	AddressBits uint8 `yaml:"address_bits"`

	// DeviceID is the expected RDID response (optional)
	DeviceID HexBytes `yaml:"device_id,omitempty"`
}

// AddressMask returns the mask applied to addresses before encoding.
func (p Profile) AddressMask() uint32 {
	return uint32(1)<<p.AddressBits - 1
}

// ReservedMask returns the bits of the 24-bit address field that are forced
// to zero.
func (p Profile) ReservedMask() uint32 {
	return protocol.AddressFieldMask &^ p.AddressMask()
}

// Contains reports whether addr is a valid byte offset.
func (p Profile) Contains(addr uint32) bool {
	return addr < p.Capacity
}

// ProtectedRange returns the half-open address range [start, end) that
// level write-protects. For ProtectNone the range is empty.
func (p Profile) ProtectedRange(level protocol.ProtectionLevel) (start, end uint32) {
	switch level {
	case protocol.ProtectUpperQuarter:
		return p.Capacity - p.Capacity/4, p.Capacity
	case protocol.ProtectUpperHalf:
		return p.Capacity / 2, p.Capacity
	case protocol.ProtectAll:
		return 0, p.Capacity
	default:
		return p.Capacity, p.Capacity
	}
}

// Protects reports whether writing n bytes at addr touches the range level
// protects. The transfer wraps at the end of the array like the device does.
func (p Profile) Protects(level protocol.ProtectionLevel, addr uint32, n int) bool {
	start, end := p.ProtectedRange(level)
	if start >= end || n <= 0 {
		return false
	}
	if uint64(n) >= uint64(p.Capacity) {
		return true
	}
	addr %= p.Capacity
	last := uint64(addr) + uint64(n) - 1
	if last < uint64(p.Capacity) {
		return uint64(addr) < uint64(end) && last >= uint64(start)
	}
	// wrapped: [addr, capacity) and [0, last-capacity]
	return addr < end || uint64(start) <= last-uint64(p.Capacity)
}

// Validate checks profile consistency.
// It MUST NOT mutate the profile.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if p.AddressBits == 0 || p.AddressBits > protocol.AddressSize*8 {
		return fmt.Errorf("profile %q: address_bits must be 1-%d, got %d",
			p.Name, protocol.AddressSize*8, p.AddressBits)
	}
	if p.Capacity == 0 {
		return fmt.Errorf("profile %q: capacity must be greater than zero", p.Name)
	}
	if p.Capacity-1 > p.AddressMask() {
		return fmt.Errorf("profile %q: capacity 0x%X does not fit in %d address bits",
			p.Name, p.Capacity, p.AddressBits)
	}
	if len(p.DeviceID) != 0 && len(p.DeviceID) != protocol.DeviceIDSize {
		return fmt.Errorf("profile %q: device_id must be %d bytes, got %d",
			p.Name, protocol.DeviceIDSize, len(p.DeviceID))
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (%d KiB, %d-bit address)", p.Name, p.Capacity/1024, p.AddressBits)
}

// Built-in profiles for FM25V parts that use a three-byte address field.
var (
	// FM25V10 is the 1-Mbit (128K x 8) part
	FM25V10 = Profile{
		Name:        "FM25V10",
		Capacity:    0x20000,
		AddressBits: 17,
		DeviceID:    HexBytes{0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0xC2, 0x24, 0x00},
	}

	// FM25V20A is the 2-Mbit (256K x 8) part
	FM25V20A = Profile{
		Name:        "FM25V20A",
		Capacity:    0x40000,
		AddressBits: 18,
		DeviceID:    HexBytes{0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0xC2, 0x25, 0x08},
	}
)

// Default is the profile used when none is selected.
var Default = FM25V20A

var builtin = map[string]Profile{
	FM25V10.Name:  FM25V10,
	FM25V20A.Name: FM25V20A,
}

// Lookup returns the built-in profile with the given name (case-insensitive).
func Lookup(name string) (Profile, bool) {
	for n, p := range builtin {
		if strings.EqualFold(n, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// Builtin returns the built-in profiles sorted by name.
func Builtin() []Profile {
	out := make([]Profile, 0, len(builtin))
	for _, p := range builtin {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
