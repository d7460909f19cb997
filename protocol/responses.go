package protocol

import "fmt"

// JEDEC identification constants.
const (
	// JEDECContinuation is the continuation code preceding the manufacturer
	JEDECContinuation = 0x7F

	// ManufacturerCypress is the Ramtron/Cypress manufacturer code
	ManufacturerCypress = 0xC2
)

// ParseStatusResponse parses the RDSR response.
func ParseStatusResponse(data []byte) (Status, error) {
	if len(data) != StatusSize {
		return 0, fmt.Errorf("invalid data length for Read Status response: got %d bytes, expected %d", len(data), StatusSize)
	}
	return Status(data[0]), nil
}

// ParseDeviceID parses the RDID response.
//
// Data format (DeviceIDSize bytes):
//
//	[0x7F x N][MANUFACTURER][FAMILY(3)|DENSITY(5)][SUB(2)|REV(3)|RSVD(3)]
//
// FM25V parts send six continuation bytes, so N+3 == DeviceIDSize.
func ParseDeviceID(data []byte) (*DeviceID, error) {
	if len(data) != DeviceIDSize {
		return nil, fmt.Errorf("invalid data length for Read ID response: got %d bytes, expected %d", len(data), DeviceIDSize)
	}

	id := &DeviceID{}
	copy(id.Raw[:], data)

	n := 0
	for n < DeviceIDSize-2 && data[n] == JEDECContinuation {
		n++
	}
	if n >= DeviceIDSize-2 {
		return nil, fmt.Errorf("no manufacturer code in Read ID response: % X", data)
	}

	id.Continuation = n
	id.Manufacturer = data[n]

	p0, p1 := data[DeviceIDSize-2], data[DeviceIDSize-1]
	id.Family = p0 >> 5
	id.Density = p0 & 0x1F
	id.SubType = p1 >> 6
	id.Revision = (p1 >> 3) & 0x07

	return id, nil
}
