package profile

import (
	"fmt"
	"strings"
	"testing"

	"github.com/msrathod/spi-fram/protocol"
)

func TestBuiltinProfilesValid(t *testing.T) {
	for _, p := range Builtin() {
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", p.Name, err)
		}
	}
	if len(Builtin()) != 2 || Builtin()[0].Name != "FM25V10" {
		t.Errorf("Builtin() not sorted or incomplete: %v", Builtin())
	}
}

func TestMasks(t *testing.T) {
	p := FM25V20A
	if got := p.AddressMask(); got != 0x3FFFF {
		t.Errorf("AddressMask = 0x%X, want 0x3FFFF", got)
	}
	if got := p.ReservedMask(); got != 0xFC0000 {
		t.Errorf("ReservedMask = 0x%X, want 0xFC0000", got)
	}
	if !p.Contains(0x3FFFF) || p.Contains(0x40000) {
		t.Error("Contains boundary is wrong")
	}
}

func TestProtectedRange(t *testing.T) {
	p := FM25V20A

	tests := []struct {
		level      protocol.ProtectionLevel
		start, end uint32
	}{
		{protocol.ProtectNone, 0x40000, 0x40000},
		{protocol.ProtectUpperQuarter, 0x30000, 0x40000},
		{protocol.ProtectUpperHalf, 0x20000, 0x40000},
		{protocol.ProtectAll, 0, 0x40000},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			start, end := p.ProtectedRange(tt.level)
			if start != tt.start || end != tt.end {
				t.Errorf("ProtectedRange = [0x%X, 0x%X), want [0x%X, 0x%X)", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestProtects(t *testing.T) {
	p := FM25V20A

	tests := []struct {
		name  string
		level protocol.ProtectionLevel
		addr  uint32
		n     int
		want  bool
	}{
		{"none", protocol.ProtectNone, 0x3FFFF, 1, false},
		{"below quarter", protocol.ProtectUpperQuarter, 0x2FFF0, 0x10, false},
		{"into quarter", protocol.ProtectUpperQuarter, 0x2FFF0, 0x11, true},
		{"inside half", protocol.ProtectUpperHalf, 0x30000, 4, true},
		{"all at zero", protocol.ProtectAll, 0, 1, true},
		{"empty write", protocol.ProtectAll, 0, 0, false},
		{"wraps through top", protocol.ProtectUpperQuarter, 0x3FFFE, 4, true},
		{"whole array", protocol.ProtectUpperQuarter, 0, 0x40000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Protects(tt.level, tt.addr, tt.n); got != tt.want {
				t.Errorf("Protects(%s, 0x%X, %d) = %v, want %v", tt.level, tt.addr, tt.n, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Profile
		wantErr string
	}{
		{
			name: "valid",
			p:    Profile{Name: "X", Capacity: 0x8000, AddressBits: 15},
		},
		{
			name:    "empty name",
			p:       Profile{Capacity: 0x8000, AddressBits: 15},
			wantErr: "name must not be empty",
		},
		{
			name:    "zero address bits",
			p:       Profile{Name: "X", Capacity: 0x8000},
			wantErr: "address_bits",
		},
		{
			name:    "too many address bits",
			p:       Profile{Name: "X", Capacity: 0x8000, AddressBits: 25},
			wantErr: "address_bits",
		},
		{
			name:    "zero capacity",
			p:       Profile{Name: "X", AddressBits: 15},
			wantErr: "capacity must be greater than zero",
		},
		{
			name:    "capacity exceeds address width",
			p:       Profile{Name: "X", Capacity: 0x10000, AddressBits: 15},
			wantErr: "does not fit",
		},
		{
			name:    "short device id",
			p:       Profile{Name: "X", Capacity: 0x8000, AddressBits: 15, DeviceID: HexBytes{0xC2}},
			wantErr: "device_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("fm25v20a")
	if !ok || p.Name != "FM25V20A" {
		t.Errorf("Lookup(fm25v20a) = %v, %v", p, ok)
	}
	if _, ok := Lookup("FM25V99"); ok {
		t.Error("Lookup should fail for unknown part")
	}
}

func TestString(t *testing.T) {
	want := "FM25V20A (256 KiB, 18-bit address)"

	if got := fmt.Sprint(FM25V20A); got != want {
		t.Errorf("fmt.Sprint(FM25V20A) = %q, want %q", got, want)
	}
	if got := fmt.Sprintf("%s", Builtin()[1]); got != want {
		t.Errorf("Sprintf of a returned profile = %q, want %q", got, want)
	}
	// methods must be callable on non-addressable values
	if p, _ := Lookup("fm25v10"); p.String() != "FM25V10 (128 KiB, 17-bit address)" {
		t.Errorf("String() = %q", p.String())
	}
	if start, _ := Builtin()[0].ProtectedRange(protocol.ProtectUpperHalf); start != 0x10000 {
		t.Errorf("ProtectedRange on a returned value = 0x%X, want 0x10000", start)
	}
}
