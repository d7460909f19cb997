package protocol

// BuildAddressStream constructs the instruction and address prefix used by
// READ and WRITE.
//
// Frame structure:
//
//	[OPCODE][A23..A16][A15..A8][A7..A0]
//
// The address is masked with mask before it is encoded so bits the device
// does not decode are always sent as zero. No range validation happens here.
func BuildAddressStream(addr uint32, opcode byte, mask uint32) [AddressStreamSize]byte {
	addr &= mask & AddressFieldMask
	return [AddressStreamSize]byte{
		opcode,
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
	}
}

// BuildReadCmd constructs the READ prefix for addr.
func BuildReadCmd(addr, mask uint32) []byte {
	s := BuildAddressStream(addr, CmdRead, mask)
	return s[:]
}

// BuildWriteCmd constructs the WRITE prefix for addr. The payload is sent as
// a separate stream while the chip stays selected.
func BuildWriteCmd(addr, mask uint32) []byte {
	s := BuildAddressStream(addr, CmdWrite, mask)
	return s[:]
}

// BuildWriteStatusCmd constructs the WRSR frame.
//
// Frame structure:
//
//	[0x01][STATUS]
func BuildWriteStatusCmd(s Status) []byte {
	return []byte{CmdWriteStatus, byte(s)}
}

// BuildUnlockCmd constructs the WRSR frame that sets the block protect level
// and clears every other writable bit.
func BuildUnlockCmd(level ProtectionLevel) ([]byte, error) {
	if !level.Valid() {
		return nil, &LevelError{Level: level}
	}
	return BuildWriteStatusCmd(level.Status()), nil
}

// BuildOpcodeCmd constructs a single-byte instruction frame (RDSR, WREN,
// WRDI, RDID, SLEEP).
func BuildOpcodeCmd(opcode byte) []byte {
	return []byte{opcode}
}
