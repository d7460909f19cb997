// Package fram drives FM25V-family SPI ferroelectric RAM.
//
// # Overview
//
// A Device turns high-level operations into the exact byte sequences the
// chip expects and enforces the write enable protocol:
//   - Read and Write of the memory array
//   - ReadStatus and WriteStatus of the status register
//   - WriteEnable and WriteDisable of the write enable latch
//   - ReadID, Sleep and block protection (Unlock, UnlockAll)
//   - Checksum, a CRC-16 over a range read in one transaction
//
// Every mutating operation arms the write enable latch first and confirms
// it by polling the status register. The device clears the latch again at
// the end of the WRITE or WRSR transaction.
//
// # Basic Usage
//
//	conn, err := bus.OpenSpidev("/dev/spidev0.0", bus.SpidevConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dev, err := fram.New(conn, profile.FM25V20A)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := dev.Write(ctx, 0x0100, []byte("hello")); err != nil {
//	    log.Fatal(err)
//	}
//
//	buf := make([]byte, 5)
//	err = dev.Read(ctx, 0x0100, buf)
//
// # Configuration Options
//
//	dev, err := fram.New(conn, profile.FM25V20A,
//	    fram.WithLogger(myLogger),
//	    fram.WithPollLimit(100),
//	    fram.WithPollTimeout(5*time.Millisecond),
//	    fram.WithStrictBounds(true),
//	    fram.WithProtectionCheck(true),
//	    fram.WithVerifyAfterWrite(true),
//	)
//
// The checks are off by default, so a default Device issues exactly one
// transaction sequence per call.
//
// # Latch Polling
//
// The wait for the write enable latch is delegated to a Poller. The default
// BoundedPoller gives up after 1000 status reads. A poller that gives up
// produces a TimeoutError; cancelling the caller's context returns the
// context error instead. Use WithPoller to add a watchdog kick or a custom
// back-off.
//
// # Error Handling
//
// The package provides structured error types:
//   - AddressError: start address at or beyond the capacity, no bus activity
//   - OverflowError: transfer past the end with strict bounds
//   - TimeoutError: the latch never reached the requested state
//   - ProtectedError: write into a block protected range
//   - VerifyError: read-back data differs
//   - ProtectError: block protect bits did not take
//   - DeviceMismatchError: RDID differs from the profile
//
// Each of them maps to a protocol.Result; protocol.ResultOf(err) gives the
// result code of any returned error. Transport errors are wrapped with %w.
package fram
