// Package protocol implements the SPI command set of FM25V-family ferroelectric RAM.
//
// This package provides functions to build instruction streams and parse
// device responses according to the FM25V20A datasheet. It performs no I/O.
//
// # Protocol Overview
//
// Every transaction starts with a one-byte opcode while the chip is selected:
//
//	Read:   [0x03][A23..A16][A15..A8][A7..A0] -> N data bytes
//	Write:  [0x02][A23..A16][A15..A8][A7..A0][DATA...]
//	RDSR:   [0x05] -> 1 status byte
//	WRSR:   [0x01][STATUS]
//	WREN:   [0x06]
//	WRDI:   [0x04]
//	RDID:   [0x9F] -> 9 identification bytes
//	SLEEP:  [0xB9]
//
// The address field is always three bytes, most significant first. Bits the
// device does not decode are sent as zero.
//
// # Command Builders
//
// Use the Build* functions to create instruction streams:
//
//	prefix := protocol.BuildReadCmd(addr, mask)
//	frame, err := protocol.BuildUnlockCmd(protocol.ProtectNone)
//
// # Status Register
//
// Status decodes the register:
//
//	s, _ := protocol.ParseStatusResponse(rx)
//	if s.WriteEnabled() { ... }
//	level := s.Level()
//
// # Results
//
// Result numbers the outcome codes used by embedded FRAM firmware. Errors
// returned by the driver implement Resulter, and ResultOf maps any error to
// its code:
//
//	if protocol.ResultOf(err) == protocol.ResultAddressInvalid { ... }
//
// # Reference
//
// Cypress FM25V20A 2-Mbit (256K x 8) Serial (SPI) F-RAM datasheet, 001-84497.
package protocol
