package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseStatusResponse(t *testing.T) {
	s, err := ParseStatusResponse([]byte{0xCE})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.WriteProtectEnabled() {
		t.Error("WPEN should be set")
	}
	if !s.WriteEnabled() {
		t.Error("WEL should be set")
	}
	if s.Level() != ProtectAll {
		t.Errorf("level = %s, want all", s.Level())
	}
	if s.Persistent() != 0x8C {
		t.Errorf("persistent = 0x%02X, want 0x8C", byte(s.Persistent()))
	}

	for _, data := range [][]byte{nil, {}, {0x40, 0x40}} {
		if _, err := ParseStatusResponse(data); err == nil {
			t.Errorf("expected error for % X", data)
		}
	}
}

func TestStatusLevels(t *testing.T) {
	tests := []struct {
		status Status
		want   ProtectionLevel
	}{
		{0x40, ProtectNone},
		{0x44, ProtectUpperQuarter},
		{0x48, ProtectUpperHalf},
		{0x4C, ProtectAll},
		{0xC2, ProtectNone},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("0x%02X", byte(tt.status)), func(t *testing.T) {
			if got := tt.status.Level(); got != tt.want {
				t.Errorf("Level() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseDeviceID(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantErr      bool
		wantCont     int
		wantMfr      byte
		wantFamily   byte
		wantDensity  byte
		wantRevision byte
		wantProduct  uint16
	}{
		{
			name:         "FM25V20A",
			data:         []byte{0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0xC2, 0x25, 0x08},
			wantCont:     6,
			wantMfr:      ManufacturerCypress,
			wantFamily:   1,
			wantDensity:  5,
			wantRevision: 1,
			wantProduct:  0x2508,
		},
		{
			name:        "FM25V10",
			data:        []byte{0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0xC2, 0x24, 0x00},
			wantCont:    6,
			wantMfr:     ManufacturerCypress,
			wantFamily:  1,
			wantDensity: 4,
			wantProduct: 0x2400,
		},
		{
			name:    "only continuation bytes",
			data:    []byte{0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F},
			wantErr: true,
		},
		{
			name:    "short",
			data:    []byte{0x7F, 0xC2, 0x25},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseDeviceID(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Continuation != tt.wantCont {
				t.Errorf("Continuation = %d, want %d", id.Continuation, tt.wantCont)
			}
			if id.Manufacturer != tt.wantMfr {
				t.Errorf("Manufacturer = 0x%02X, want 0x%02X", id.Manufacturer, tt.wantMfr)
			}
			if id.Family != tt.wantFamily {
				t.Errorf("Family = %d, want %d", id.Family, tt.wantFamily)
			}
			if id.Density != tt.wantDensity {
				t.Errorf("Density = %d, want %d", id.Density, tt.wantDensity)
			}
			if id.Revision != tt.wantRevision {
				t.Errorf("Revision = %d, want %d", id.Revision, tt.wantRevision)
			}
			if id.ProductID() != tt.wantProduct {
				t.Errorf("ProductID = 0x%04X, want 0x%04X", id.ProductID(), tt.wantProduct)
			}
		})
	}
}

func TestParseProtectionLevel(t *testing.T) {
	for _, l := range []ProtectionLevel{ProtectNone, ProtectUpperQuarter, ProtectUpperHalf, ProtectAll} {
		got, err := ParseProtectionLevel(l.String())
		if err != nil {
			t.Fatalf("ParseProtectionLevel(%q): %v", l.String(), err)
		}
		if got != l {
			t.Errorf("ParseProtectionLevel(%q) = %s", l.String(), got)
		}
	}
	if _, err := ParseProtectionLevel("most"); err == nil {
		t.Error("expected error for unknown level")
	}
}

type codedError struct{ r Result }

func (e *codedError) Error() string  { return e.r.String() }
func (e *codedError) Result() Result { return e.r }

func TestResultOf(t *testing.T) {
	if got := ResultOf(nil); got != ResultSuccess {
		t.Errorf("ResultOf(nil) = %s", got)
	}
	if got := ResultOf(errors.New("bus fault")); got != ResultWrongType {
		t.Errorf("ResultOf(plain) = %s", got)
	}
	wrapped := fmt.Errorf("write: %w", &codedError{ResultSectorProtected})
	if got := ResultOf(wrapped); got != ResultSectorProtected {
		t.Errorf("ResultOf(wrapped) = %s", got)
	}
	if got := ResultOf(&LevelError{Level: 9}); got != ResultWrongType {
		t.Errorf("ResultOf(LevelError) = %s", got)
	}
}

func TestResultString(t *testing.T) {
	seen := make(map[string]Result)
	for r := ResultSuccess; r <= ResultWrongType; r++ {
		s := r.String()
		if strings.HasPrefix(s, "unknown result") {
			t.Errorf("result %d has no name", r)
		}
		if prev, ok := seen[s]; ok {
			t.Errorf("results %d and %d share name %q", prev, r, s)
		}
		seen[s] = r
	}
	if !strings.Contains(Result(0xEE).String(), "0xEE") {
		t.Errorf("unknown result string = %q", Result(0xEE).String())
	}
}
