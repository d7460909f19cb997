package fram

import (
	"context"
	"fmt"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/protocol"
)

// WriteEnable sends WREN and polls the status register until the write
// enable latch is set.
//
// Write and WriteStatus call it themselves. The latch clears again at the
// end of the next WRITE or WRSR transaction.
func (d *Device) WriteEnable(ctx context.Context) error {
	if err := begin(ctx, "write enable"); err != nil {
		return err
	}
	return d.setLatch(ctx, true)
}

// WriteDisable sends WRDI and polls the status register until the write
// enable latch is clear.
func (d *Device) WriteDisable(ctx context.Context) error {
	if err := begin(ctx, "write disable"); err != nil {
		return err
	}
	return d.setLatch(ctx, false)
}

// setLatch drives the write enable latch to want and waits until the
// status register shows it. Transport errors during the poll are returned
// as they are; any other poll failure becomes a TimeoutError.
func (d *Device) setLatch(ctx context.Context, want bool) error {
	op, opcode := "write enable", byte(protocol.CmdWriteEnable)
	if !want {
		op, opcode = "write disable", protocol.CmdWriteDisable
	}

	if err := d.tx(op, protocol.BuildOpcodeCmd(opcode), nil, bus.End); err != nil {
		return err
	}

	var busErr error
	attempts, err := d.config.poller().Poll(ctx, func() (bool, error) {
		s, err := d.readStatus()
		if err != nil {
			busErr = err
			return false, err
		}
		return s.WriteEnabled() == want, nil
	})
	if busErr != nil {
		return busErr
	}
	if err != nil && ctx.Err() != nil {
		d.logDebug("write enable latch poll cancelled", "want", want, "attempts", attempts)
		return fmt.Errorf("fram: %s: %w", op, ctx.Err())
	}
	if err != nil {
		d.logError("write enable latch poll failed", "want", want, "attempts", attempts, "error", err)
		return &TimeoutError{Op: op, Want: want, Attempts: attempts, Err: err}
	}

	d.logDebug("write enable latch", "set", want, "attempts", attempts)
	return nil
}
