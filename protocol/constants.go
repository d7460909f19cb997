package protocol

// Opcodes per the FM25V20A datasheet, section "SPI Mode 0 and 3 Command Set".
const (
	// CmdWriteStatus writes the status register (WRSR)
	CmdWriteStatus = 0x01

	// CmdWrite writes memory data (WRITE)
	CmdWrite = 0x02

	// CmdRead reads memory data (READ)
	CmdRead = 0x03

	// CmdWriteDisable clears the write enable latch (WRDI)
	CmdWriteDisable = 0x04

	// CmdReadStatus reads the status register (RDSR)
	CmdReadStatus = 0x05

	// CmdWriteEnable sets the write enable latch (WREN)
	CmdWriteEnable = 0x06

	// CmdReadID reads the 9-byte device identification (RDID)
	CmdReadID = 0x9F

	// CmdSleep enters the low-power sleep mode (SLEEP)
	CmdSleep = 0xB9
)

// Status register bits.
//
//	bit 7   WPEN  write protect enable (nonvolatile)
//	bit 6   reserved, always 1
//	bit 5-4 reserved, always 0
//	bit 3   BP1   block protect (nonvolatile)
//	bit 2   BP0   block protect (nonvolatile)
//	bit 1   WEL   write enable latch
//	bit 0   reserved, always 0
const (
	// StatusWPEN is the write protect enable bit
	StatusWPEN = 0x80

	// StatusReserved is the reserved bit that always reads back as 1
	StatusReserved = 0x40

	// StatusBP1 is the high block protect bit
	StatusBP1 = 0x08

	// StatusBP0 is the low block protect bit
	StatusBP0 = 0x04

	// StatusWEL is the write enable latch bit
	StatusWEL = 0x02

	// StatusBPMask selects both block protect bits
	StatusBPMask = StatusBP1 | StatusBP0

	// StatusBPShift is the position of BP0
	StatusBPShift = 2

	// StatusWritableMask selects the bits a WRSR can change
	StatusWritableMask = StatusWPEN | StatusBPMask
)

// Frame sizes.
const (
	// OpcodeSize is the size of the instruction byte
	OpcodeSize = 1

	// AddressSize is the size of the address field following READ and WRITE
	AddressSize = 3

	// AddressStreamSize is the opcode plus the address field
	AddressStreamSize = OpcodeSize + AddressSize

	// AddressFieldMask is the widest address the 3-byte field can carry
	AddressFieldMask = 0x00FFFFFF

	// StatusSize is the size of the status register
	StatusSize = 1

	// DeviceIDSize is the size of the RDID response
	DeviceIDSize = 9
)
