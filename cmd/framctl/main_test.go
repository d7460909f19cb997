package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/framsim"
	"github.com/msrathod/spi-fram/profile"
	"github.com/msrathod/spi-fram/protocol"
)

func run(t *testing.T, sim *framsim.Device, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{stdout: &out, stderr: &errOut, sim: sim}
	root := a.rootCmd()
	root.SetArgs(append([]string{"--config", "", "--driver", "sim"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsAgainstSimulator(t *testing.T) {
	sim := framsim.New(profile.FM25V20A)

	if _, err := run(t, sim, "write", "0x100", "DE:AD:BE:EF"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := sim.Peek(0x100, 4); !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("memory = % X", got)
	}

	out, err := run(t, sim, "read", "0x100", "4")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(out, "de ad be ef") {
		t.Errorf("read output = %q", out)
	}

	out, err = run(t, sim, "crc", "0x100", "4")
	if err != nil {
		t.Fatalf("crc: %v", err)
	}
	if want := fmt.Sprintf("0x%04X", protocol.CRC16([]byte{0xDE, 0xAD, 0xBE, 0xEF})); strings.TrimSpace(out) != want {
		t.Errorf("crc output = %q, want %s", out, want)
	}

	if _, err := run(t, sim, "unlock", "half"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	out, err = run(t, sim, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "level=upper-half") || !strings.Contains(out, "0x020000-0x03FFFF") {
		t.Errorf("status output = %q", out)
	}

	out, err = run(t, sim, "id", "--check")
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	if !strings.Contains(out, "7F 7F 7F 7F 7F 7F C2 25 08") {
		t.Errorf("id output = %q", out)
	}

	if _, err := run(t, sim, "sleep"); err != nil || !sim.Asleep() {
		t.Errorf("sleep: %v, asleep = %v", err, sim.Asleep())
	}
}

func TestReadOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want protocol.Result
	}{
		{"address", []string{"read", "0x40000", "1"}, protocol.ResultAddressInvalid},
		{"address with huge length", []string{"read", "0x40000", "0xFFFFFFFF"}, protocol.ResultAddressInvalid},
		{"length past capacity", []string{"read", "0", "0xFFFFFFFF"}, protocol.ResultMemoryOverflow},
		{"crc length past capacity", []string{"crc", "0", "0x40001"}, protocol.ResultMemoryOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := framsim.New(profile.FM25V20A)
			_, err := run(t, sim, tt.args...)
			if protocol.ResultOf(err) != tt.want {
				t.Errorf("%v error = %v, want %s", tt.args, err, tt.want)
			}
			if len(sim.Transactions) != 0 {
				t.Errorf("%v issued %d transactions", tt.args, len(sim.Transactions))
			}
		})
	}
}

func TestWriteTimeout(t *testing.T) {
	sim := framsim.New(profile.FM25V20A)
	sim.StuckLatch = true

	_, err := run(t, sim, "--poll-limit", "3", "write", "0", "AA")
	if protocol.ResultOf(err) != protocol.ResultOperationTimeOut {
		t.Errorf("write error = %v, want OperationTimeOut", err)
	}
}

func TestProfilesCommand(t *testing.T) {
	out, err := run(t, nil, "--profile", "fm25v10", "profiles")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if !strings.Contains(out, "* FM25V10") || !strings.Contains(out, "  FM25V20A") {
		t.Errorf("profiles output = %q", out)
	}
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "defaults",
			yaml: "",
			check: func(t *testing.T, c Config) {
				if c.Driver != driverSpidev || c.Spidev.Device != "/dev/spidev0.0" || c.Poll.Limit != 1000 {
					t.Errorf("defaults = %+v", c)
				}
			},
		},
		{
			name: "periph",
			yaml: "driver: Periph\nperiph:\n  port: SPI0.0\n  cs: GPIO8\npoll:\n  timeout_ms: 5\n",
			check: func(t *testing.T, c Config) {
				if c.Driver != driverPeriph || c.Periph.CS != "GPIO8" || c.Poll.TimeoutMs != 5 {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{name: "unknown driver", yaml: "driver: i2c\n", wantErr: true},
		{name: "unknown field", yaml: "drvier: sim\n", wantErr: true},
		{name: "bad mode", yaml: "spidev:\n  mode: 4\n", wantErr: true},
		{name: "mode 1 unsupported", yaml: "spidev:\n  mode: 1\n", wantErr: true},
		{
			name: "mode 3",
			yaml: "spidev:\n  mode: 3\n",
			check: func(t *testing.T, c Config) {
				if c.Spidev.Mode != bus.SPIMode3 {
					t.Errorf("mode = %d, want %d", c.Spidev.Mode, bus.SPIMode3)
				}
			},
		},
		{name: "bad ftdi pin", yaml: "driver: ftdi\nftdi:\n  cs: C9\n", wantErr: true},
		{name: "negative poll", yaml: "poll:\n  limit: -1\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			err := decodeConfig(strings.NewReader(tt.yaml), &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := loadConfig(filepath.Join(dir, "missing.yaml"), false); err == nil {
		t.Error("missing required config should fail")
	}
	if _, err := loadConfig(filepath.Join(dir, "missing.yaml"), true); err != nil {
		t.Errorf("missing optional config: %v", err)
	}

	profiles := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(profiles, []byte("profiles:\n  - name: CY15B104Q\n    capacity: 0x80000\n    address_bits: 19\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "framctl.yaml")
	content := "driver: sim\nprofile: cy15b104q\nprofiles_file: " + profiles + "\nverify: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, false)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	p, err := cfg.resolveProfile()
	if err != nil {
		t.Fatalf("resolveProfile() error = %v", err)
	}
	if p.Capacity != 0x80000 || !cfg.Verify {
		t.Errorf("profile = %s, verify = %v", p.String(), cfg.Verify)
	}
	if len(cfg.options(nil)) != 6 {
		t.Errorf("options() returned %d options, want 6", len(cfg.options(nil)))
	}
}

func TestParseHex(t *testing.T) {
	for _, s := range []string{"DEADBEEF", "de ad be ef", "de:ad:be:ef", "0xDEADBEEF"} {
		b, err := parseHex(s)
		if err != nil || !bytes.Equal(b, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
			t.Errorf("parseHex(%q) = % X, %v", s, b, err)
		}
	}
	if _, err := parseHex("XYZ"); err == nil {
		t.Error("parseHex should reject non-hex input")
	}
}

func TestFormatKV(t *testing.T) {
	if got := formatKV([]interface{}{"addr", "0x000100", "len", 4, "odd"}); got != "addr=0x000100 len=4 odd" {
		t.Errorf("formatKV() = %q", got)
	}
}
