package fram

import (
	"context"
	"fmt"

	"github.com/msrathod/spi-fram/bus"
	"github.com/msrathod/spi-fram/protocol"
)

// ProtectionState is the decoded write protection of the device.
type ProtectionState struct {
	// WriteProtectEnabled is WPEN: with /WP low the status register is
	// read-only
	WriteProtectEnabled bool

	// Level is the block protect level
	Level protocol.ProtectionLevel

	// Start and End bound the protected address range [Start, End).
	// They are equal when nothing is protected.
	Start, End uint32
}

// ReadStatus reads the status register.
func (d *Device) ReadStatus(ctx context.Context) (protocol.Status, error) {
	if err := begin(ctx, "read status"); err != nil {
		return 0, err
	}
	return d.readStatus()
}

func (d *Device) readStatus() (protocol.Status, error) {
	var buf [protocol.StatusSize]byte
	if err := d.tx("read status", protocol.BuildOpcodeCmd(protocol.CmdReadStatus), buf[:], bus.End); err != nil {
		return 0, err
	}
	return protocol.ParseStatusResponse(buf[:])
}

// WriteStatus writes s to the status register after a confirmed write
// enable. The device keeps WPEN, BP1 and BP0; WEL clears itself at the end
// of the transaction.
func (d *Device) WriteStatus(ctx context.Context, s protocol.Status) error {
	if err := begin(ctx, "write status"); err != nil {
		return err
	}
	return d.writeStatus(ctx, s)
}

func (d *Device) writeStatus(ctx context.Context, s protocol.Status) error {
	if err := d.setLatch(ctx, true); err != nil {
		return err
	}
	if err := d.tx("write status", protocol.BuildWriteStatusCmd(s), nil, bus.End); err != nil {
		return err
	}
	d.logDebug("write status", "status", fmt.Sprintf("0x%02X", byte(s)))
	return nil
}

// Unlock sets the block protect level. The written status byte carries
// only the level in bits 3..2; WPEN is cleared.
//
// With verification enabled the status register is read back and a
// ProtectError is returned if the level did not take, e.g. because /WP is
// low and WPEN was set.
func (d *Device) Unlock(ctx context.Context, level protocol.ProtectionLevel) error {
	if err := begin(ctx, "unlock"); err != nil {
		return err
	}

	cmd, err := protocol.BuildUnlockCmd(level)
	if err != nil {
		return fmt.Errorf("fram: unlock: %w", err)
	}
	if err := d.writeStatus(ctx, protocol.Status(cmd[1])); err != nil {
		return err
	}
	d.logInfo("block protection set", "level", level.String())

	if !d.config.VerifyAfterWrite {
		return nil
	}
	s, err := d.readStatus()
	if err != nil {
		return err
	}
	if got := s.Level(); got != level {
		d.logError("block protection not applied", "want", level.String(), "got", got.String())
		return &ProtectError{Want: level, Got: got}
	}
	return nil
}

// UnlockAll removes block protection from the whole array.
func (d *Device) UnlockAll(ctx context.Context) error {
	return d.Unlock(ctx, protocol.ProtectNone)
}

// Protection reads the status register and decodes the write protection.
func (d *Device) Protection(ctx context.Context) (ProtectionState, error) {
	s, err := d.ReadStatus(ctx)
	if err != nil {
		return ProtectionState{}, err
	}
	start, end := d.profile.ProtectedRange(s.Level())
	return ProtectionState{
		WriteProtectEnabled: s.WriteProtectEnabled(),
		Level:               s.Level(),
		Start:               start,
		End:                 end,
	}, nil
}
