package protocol

import (
	"errors"
	"fmt"
)

// Result is the outcome code of a driver operation.
//
// The numbering matches the outcome codes used by embedded FRAM firmware
// drivers. Not every value is currently produced.
type Result byte

const (
	ResultSuccess Result = iota
	ResultAddressInvalid
	ResultRegAddressInvalid
	ResultMemoryOverflow
	ResultNoInformationAvailable
	ResultOperationOngoing
	ResultOperationTimeOut
	ResultWriteFailed
	ResultSectorProtected
	ResultSectorUnprotected
	ResultSectorProtectFailed
	ResultSectorUnprotectFailed
	ResultSectorLocked
	ResultSectorUnlocked
	ResultSectorLockDownFailed
	ResultWrongType
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultAddressInvalid:
		return "address invalid"
	case ResultRegAddressInvalid:
		return "register address invalid"
	case ResultMemoryOverflow:
		return "memory overflow"
	case ResultNoInformationAvailable:
		return "no information available"
	case ResultOperationOngoing:
		return "operation ongoing"
	case ResultOperationTimeOut:
		return "operation timed out"
	case ResultWriteFailed:
		return "write failed"
	case ResultSectorProtected:
		return "sector protected"
	case ResultSectorUnprotected:
		return "sector unprotected"
	case ResultSectorProtectFailed:
		return "sector protect failed"
	case ResultSectorUnprotectFailed:
		return "sector unprotect failed"
	case ResultSectorLocked:
		return "sector locked"
	case ResultSectorUnlocked:
		return "sector unlocked"
	case ResultSectorLockDownFailed:
		return "sector lock down failed"
	case ResultWrongType:
		return "wrong type"
	default:
		return fmt.Sprintf("unknown result 0x%02X", byte(r))
	}
}

// Resulter is implemented by errors that carry a Result.
type Resulter interface {
	Result() Result
}

// ResultOf maps err to a Result. A nil error is ResultSuccess; an error that
// carries no Result anywhere in its chain is ResultWrongType.
func ResultOf(err error) Result {
	if err == nil {
		return ResultSuccess
	}
	var r Resulter
	if errors.As(err, &r) {
		return r.Result()
	}
	return ResultWrongType
}

// LevelError indicates a protection level outside the two block protect bits.
type LevelError struct {
	Level ProtectionLevel
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("invalid protection level %d: valid range is 0-3", byte(e.Level))
}

// Result implements Resulter.
func (e *LevelError) Result() Result { return ResultWrongType }

// IsLevelError returns true if the error is a LevelError.
func IsLevelError(err error) bool {
	var e *LevelError
	return errors.As(err, &e)
}
