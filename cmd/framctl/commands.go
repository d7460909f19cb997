package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msrathod/spi-fram/fram"
	"github.com/msrathod/spi-fram/profile"
	"github.com/msrathod/spi-fram/protocol"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Read the status register and block protection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(func(dev *fram.Device) error {
				s, err := dev.ReadStatus(cmd.Context())
				if err != nil {
					return err
				}
				start, end := dev.Profile().ProtectedRange(s.Level())
				fmt.Fprintf(a.stdout, "status:     %s\n", s)
				if start < end {
					fmt.Fprintf(a.stdout, "protected:  0x%06X-0x%06X\n", start, end-1)
				} else {
					fmt.Fprintln(a.stdout, "protected:  none")
				}
				return nil
			})
		},
	}
}

func (a *app) idCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Read the device identification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(func(dev *fram.Device) error {
				read := dev.ReadID
				if check {
					read = dev.VerifyID
				}
				id, err := read(cmd.Context())
				if id != nil {
					fmt.Fprintf(a.stdout, "raw:  % X\n", id.Raw)
					fmt.Fprintf(a.stdout, "id:   %s\n", id)
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "fail if the ID does not match the profile")
	return cmd
}

func (a *app) readCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "read ADDR LEN",
		Short: "Read LEN bytes starting at ADDR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseUint32(args[0])
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			n, err := parseUint32(args[1])
			if err != nil {
				return fmt.Errorf("length: %w", err)
			}

			var buf []byte
			err = a.withDevice(func(dev *fram.Device) error {
				if err := checkLength(dev.Profile(), "read", addr, n); err != nil {
					return err
				}
				buf = make([]byte, n)
				return dev.Read(cmd.Context(), addr, buf)
			})
			if err != nil {
				return err
			}

			if out != "" {
				return os.WriteFile(out, buf, 0o644)
			}
			_, err = fmt.Fprint(a.stdout, hex.Dump(buf))
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write raw bytes to this file instead of a hex dump")
	return cmd
}

func (a *app) crcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crc ADDR LEN",
		Short: "Print the CRC-16-CCITT of LEN bytes starting at ADDR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseUint32(args[0])
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			n, err := parseUint32(args[1])
			if err != nil {
				return fmt.Errorf("length: %w", err)
			}
			return a.withDevice(func(dev *fram.Device) error {
				crc, err := dev.Checksum(cmd.Context(), addr, int(n))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "0x%04X\n", crc)
				return nil
			})
		},
	}
}

func (a *app) writeCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "write ADDR [HEX]",
		Short: "Write hex bytes (or --in file) starting at ADDR",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseUint32(args[0])
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}

			var data []byte
			switch {
			case in != "" && len(args) == 2:
				return fmt.Errorf("give either HEX or --in, not both")
			case in != "":
				data, err = os.ReadFile(in)
			case len(args) == 2:
				data, err = parseHex(args[1])
			default:
				return fmt.Errorf("nothing to write")
			}
			if err != nil {
				return err
			}

			return a.withDevice(func(dev *fram.Device) error {
				if err := dev.Write(cmd.Context(), addr, data); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "wrote %d bytes at 0x%06X\n", len(data), addr)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "file with raw bytes to write")
	return cmd
}

func (a *app) writeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wrsr VALUE",
		Short: "Write the status register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			return a.withDevice(func(dev *fram.Device) error {
				return dev.WriteStatus(cmd.Context(), protocol.Status(v))
			})
		},
	}
}

func (a *app) unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock [none|quarter|half|all]",
		Short: "Set the block protect level (default none)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := protocol.ProtectNone
			if len(args) == 1 {
				l, err := protocol.ParseProtectionLevel(args[0])
				if err != nil {
					return err
				}
				level = l
			}
			return a.withDevice(func(dev *fram.Device) error {
				return dev.Unlock(cmd.Context(), level)
			})
		},
	}
}

func (a *app) wrenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wren",
		Short: "Set the write enable latch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(func(dev *fram.Device) error {
				return dev.WriteEnable(cmd.Context())
			})
		},
	}
}

func (a *app) wrdiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wrdi",
		Short: "Clear the write enable latch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(func(dev *fram.Device) error {
				return dev.WriteDisable(cmd.Context())
			})
		},
	}
}

func (a *app) sleepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sleep",
		Short: "Enter sleep mode; the next command wakes the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(func(dev *fram.Device) error {
				return dev.Sleep(cmd.Context())
			})
		},
	}
}

func (a *app) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List known device profiles",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			list := profile.Builtin()
			if a.cfg.ProfilesFile != "" {
				set, err := profile.Parse(a.cfg.ProfilesFile)
				if err != nil {
					return fmt.Errorf("%s: %w", a.cfg.ProfilesFile, err)
				}
				list = append(list, set.Profiles...)
			}
			for i := range list {
				mark := " "
				if strings.EqualFold(list[i].Name, a.cfg.Profile) {
					mark = "*"
				}
				fmt.Fprintf(a.stdout, "%s %s\n", mark, list[i].String())
			}
			return nil
		},
	}
}

// checkLength rejects an address or length the array cannot hold before a
// buffer is allocated for it.
func checkLength(p profile.Profile, op string, addr, n uint32) error {
	if !p.Contains(addr) {
		return &fram.AddressError{Op: op, Address: addr, Capacity: p.Capacity}
	}
	if n > p.Capacity {
		return &fram.OverflowError{Op: op, Address: addr, Length: int(n), Capacity: p.Capacity}
	}
	return nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// parseHex accepts "DEADBEEF", "de ad be ef", "de:ad" and a 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "0x", "", "0X", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex bytes: %w", err)
	}
	return b, nil
}
