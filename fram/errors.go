package fram

import (
	"errors"
	"fmt"

	"github.com/msrathod/spi-fram/protocol"
)

// AddressError indicates a start address at or beyond the device capacity.
// It is returned before any bus activity.
type AddressError struct {
	Op       string
	Address  uint32
	Capacity uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("fram: %s: address 0x%X is out of range: valid range is 0x0-0x%X",
		e.Op, e.Address, e.Capacity-1)
}

// Result implements protocol.Resulter.
func (e *AddressError) Result() protocol.Result { return protocol.ResultAddressInvalid }

// OverflowError indicates a transfer running past the end of the array while
// strict bounds are enabled, or a requested length larger than the array.
type OverflowError struct {
	Op       string
	Address  uint32
	Length   int
	Capacity uint32
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("fram: %s: %d bytes at 0x%X overflow the %d-byte array",
		e.Op, e.Length, e.Address, e.Capacity)
}

// Result implements protocol.Resulter.
func (e *OverflowError) Result() protocol.Result { return protocol.ResultMemoryOverflow }

// TimeoutError indicates that the write enable latch never reached the
// requested state.
type TimeoutError struct {
	Op       string
	Want     bool
	Attempts int
	Err      error
}

func (e *TimeoutError) Error() string {
	state := "clear"
	if e.Want {
		state = "set"
	}
	return fmt.Sprintf("fram: %s: write enable latch not %s after %d status reads: %v",
		e.Op, state, e.Attempts, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Result implements protocol.Resulter.
func (e *TimeoutError) Result() protocol.Result { return protocol.ResultOperationTimeOut }

// ProtectedError indicates a write into a block protected by BP1/BP0.
type ProtectedError struct {
	Address uint32
	Length  int
	Level   protocol.ProtectionLevel
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("fram: write: %d bytes at 0x%X hit a block protected at level %s",
		e.Length, e.Address, e.Level)
}

// Result implements protocol.Resulter.
func (e *ProtectedError) Result() protocol.Result { return protocol.ResultSectorProtected }

// VerifyError indicates that read-back data differs from what was written.
type VerifyError struct {
	Address  uint32
	Expected byte
	Actual   byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("fram: write: verify mismatch at 0x%X: expected 0x%02X, got 0x%02X",
		e.Address, e.Expected, e.Actual)
}

// Result implements protocol.Resulter.
func (e *VerifyError) Result() protocol.Result { return protocol.ResultWriteFailed }

// ProtectError indicates that the block protect bits did not take the
// requested level.
type ProtectError struct {
	Want protocol.ProtectionLevel
	Got  protocol.ProtectionLevel
}

func (e *ProtectError) Error() string {
	return fmt.Sprintf("fram: unlock: block protect level is %s, want %s", e.Got, e.Want)
}

// Result implements protocol.Resulter.
func (e *ProtectError) Result() protocol.Result {
	if e.Want == protocol.ProtectNone {
		return protocol.ResultSectorUnprotectFailed
	}
	return protocol.ResultSectorProtectFailed
}

// DeviceMismatchError indicates that the device identification doesn't match
// the profile.
type DeviceMismatchError struct {
	Profile  string
	Expected []byte
	Actual   []byte
}

func (e *DeviceMismatchError) Error() string {
	return fmt.Sprintf("fram: device mismatch: profile %s expects ID % X, device has % X",
		e.Profile, e.Expected, e.Actual)
}

// Result implements protocol.Resulter.
func (e *DeviceMismatchError) Result() protocol.Result { return protocol.ResultWrongType }

// IsAddressError returns true if err is or wraps an AddressError.
func IsAddressError(err error) bool {
	var e *AddressError
	return errors.As(err, &e)
}

// IsTimeoutError returns true if err is or wraps a TimeoutError.
func IsTimeoutError(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}
