// Command framctl reads, writes and inspects an FM25V-family SPI FRAM.
//
//	framctl --driver spidev --device /dev/spidev0.0 status
//	framctl read 0x0000 64
//	framctl write 0x0100 DEADBEEF
//	framctl unlock none
//	framctl --driver sim id
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/fram"
	"github.com/msrathod/spi-fram/framsim"
	"github.com/msrathod/spi-fram/protocol"
)

const defaultConfigPath = "framctl.yaml"

type app struct {
	configPath string
	cfg        Config

	// flag overrides
	driver, device, port, cs, profileName, profilesFile string
	speed                                              uint32
	pollLimit, pollTimeout                             int
	verify, strict, protect, verbose                   bool

	stdout io.Writer
	stderr io.Writer

	// sim, when set, is used for the sim driver instead of a blank device
	sim *framsim.Device
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	root := a.rootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v (%s)\n", err, protocol.ResultOf(err))
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "framctl",
		Short:         "FM25V SPI FRAM utility",
		Long:          "Read, write, protect and identify FM25V-family SPI FRAM over spidev, periph.io, FTDI or a simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", defaultConfigPath, "config file")
	pf.StringVar(&a.driver, "driver", "", "transport: spidev|periph|ftdi|sim")
	pf.StringVar(&a.device, "device", "", "spidev device path (e.g. /dev/spidev0.0)")
	pf.StringVar(&a.port, "port", "", "periph SPI port name (e.g. SPI0.0)")
	pf.StringVar(&a.cs, "cs", "", "chip select GPIO name (periph) or FT232H pin D3-D7 (ftdi)")
	pf.Uint32Var(&a.speed, "speed", 0, "SPI clock in Hz (0 = default)")
	pf.StringVar(&a.profileName, "profile", "", "device profile name")
	pf.StringVar(&a.profilesFile, "profiles", "", "YAML file with extra device profiles")
	pf.IntVar(&a.pollLimit, "poll-limit", 0, "max status reads while waiting for the write enable latch")
	pf.IntVar(&a.pollTimeout, "poll-timeout", 0, "latch poll timeout in milliseconds")
	pf.BoolVar(&a.verify, "verify", false, "read back after write and unlock")
	pf.BoolVar(&a.strict, "strict", false, "reject transfers past the end of the array")
	pf.BoolVar(&a.protect, "protection-check", false, "reject writes into block protected ranges")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log driver activity")

	root.AddCommand(
		a.statusCmd(),
		a.idCmd(),
		a.readCmd(),
		a.crcCmd(),
		a.writeCmd(),
		a.writeStatusCmd(),
		a.unlockCmd(),
		a.wrenCmd(),
		a.wrdiCmd(),
		a.sleepCmd(),
		a.profilesCmd(),
	)
	return root
}

// loadConfig reads the config file and applies the flags the user set.
func (a *app) loadConfig(cmd *cobra.Command) error {
	optional := !cmd.Flags().Changed("config")
	cfg, err := loadConfig(a.configPath, optional)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = a.driver
	}
	if flags.Changed("device") {
		cfg.Spidev.Device = a.device
	}
	if flags.Changed("port") {
		cfg.Periph.Port = a.port
	}
	if flags.Changed("cs") {
		cfg.Periph.CS = a.cs
		cfg.FTDI.CS = a.cs
	}
	if flags.Changed("speed") {
		cfg.Spidev.SpeedHz = a.speed
		cfg.Periph.SpeedHz = a.speed
		cfg.FTDI.SpeedHz = a.speed
	}
	if flags.Changed("profile") {
		cfg.Profile = a.profileName
	}
	if flags.Changed("profiles") {
		cfg.ProfilesFile = a.profilesFile
	}
	if flags.Changed("poll-limit") {
		cfg.Poll.Limit = a.pollLimit
	}
	if flags.Changed("poll-timeout") {
		cfg.Poll.TimeoutMs = a.pollTimeout
	}
	if flags.Changed("verify") {
		cfg.Verify = a.verify
	}
	if flags.Changed("strict") {
		cfg.Strict = a.strict
	}
	if flags.Changed("protection-check") {
		cfg.ProtectionCheck = a.protect
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// withDevice opens the transport, builds the driver and runs fn.
func (a *app) withDevice(fn func(*fram.Device) error) error {
	p, err := a.cfg.resolveProfile()
	if err != nil {
		return err
	}

	var conn bus.Conn
	if a.cfg.Driver == driverSim && a.sim != nil {
		conn = a.sim
	} else {
		c, closer, err := openConn(&a.cfg, p)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()
		conn = c
	}

	logger := &stdLogger{
		logger: log.New(a.stderr, "framctl: ", log.LstdFlags),
		debug:  a.cfg.Verbose,
	}

	logger.Debug("connected", "conn", conn, "profile", p)

	dev, err := fram.New(conn, p, a.cfg.options(logger)...)
	if err != nil {
		return err
	}
	return fn(dev)
}
