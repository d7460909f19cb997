package bus

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// See Linux "include/uapi/linux/spi/spidev.h" and
// "Documentation/spi/spidev.rst"

// Various ioctl numbers.
const (
	iocRdBitsPerWord = 0x80016b03
	iocWrBitsPerWord = 0x40016b03
	iocRdMaxSpeedHz  = 0x80046b04
	iocWrMaxSpeedHz  = 0x40046b04
	iocRdMode32      = 0x80046b05
	iocWrMode32      = 0x40046b05
)

// iocMessage is an ioctl number for n transfers.
func iocMessage(n int) uint32 {
	const (
		sizeBits  = 14
		sizeShift = 16
	)
	size := uint32(n * binary.Size(iocTransfer{}))
	if n < 0 || size > (1<<sizeBits) {
		return iocMessage(0)
	}
	return 0x40006b00 | (size << sizeShift)
}

// iocTransfer is the data type used by the iocMessage ioctl. Multiple such
// transfers are chained together in a single ioctl call.
type iocTransfer struct {
	TxBuf          uint64
	RxBuf          uint64
	Length         uint32
	SpeedHz        uint32
	DelayUsecs     uint16
	BitsPerWord    uint8
	CSChange       uint8
	TxNBits        uint8
	RxNBits        uint8
	WordDelayUsecs uint8
	Pad            uint8
}

// segment is one half-duplex leg of a queued transaction.
type segment struct {
	tx []byte
	rx []byte
}

// Spidev is a Conn on top of a Linux spidev character device.
//
// Streams are queued until End and then sent as a single SPI_IOC_MESSAGE so
// the kernel keeps chip select asserted across the whole transaction.
type Spidev struct {
	f       *os.File
	mode    uint32
	speed   uint32
	pending []segment
}

// OpenSpidev opens a spidev device such as "/dev/spidev0.0" and applies
// cfg. Remember to call Close().
func OpenSpidev(dev string, cfg SpidevConfig) (*Spidev, error) {
	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("bus: open %s: %w", dev, err)
	}
	s := &Spidev{f: f}
	if err := s.configure(cfg); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("bus: configure %s: %w", dev, err)
	}
	return s, nil
}

func (s *Spidev) configure(cfg SpidevConfig) error {
	cfg = cfg.withDefaults()
	if err := s.SetMode(cfg.Mode); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	if err := s.SetBitsPerWord(uint32(cfg.BitsPerWord)); err != nil {
		return fmt.Errorf("set bits per word: %w", err)
	}
	if err := s.SetSpeedHz(cfg.SpeedHz); err != nil {
		return fmt.Errorf("set speed: %w", err)
	}

	// Some controllers accept the ioctl but ignore the value.
	mode, err := s.Mode()
	if err != nil {
		return fmt.Errorf("get mode: %w", err)
	}
	if mode&(CPOL|CPHA) != cfg.Mode&(CPOL|CPHA) {
		return fmt.Errorf("mode %d requested, controller reports %d", cfg.Mode, mode&(CPOL|CPHA))
	}
	bpw, err := s.BitsPerWord()
	if err != nil {
		return fmt.Errorf("get bits per word: %w", err)
	}
	if bpw != uint32(cfg.BitsPerWord) {
		return fmt.Errorf("%d bits per word requested, controller reports %d", cfg.BitsPerWord, bpw)
	}
	if s.speed, err = s.SpeedHz(); err != nil {
		return fmt.Errorf("get speed: %w", err)
	}
	s.mode = mode & (CPOL | CPHA)
	return nil
}

func (s *Spidev) String() string {
	return fmt.Sprintf("%s (mode %d, %d Hz)", s.f.Name(), s.mode, s.speed)
}

// Close closes the device.
func (s *Spidev) Close() error {
	return s.f.Close()
}

// Transfer implements Conn.
func (s *Spidev) Transfer(w, r []byte, acquire, release Marker) error {
	if err := CheckMarkers(acquire, release); err != nil {
		return err
	}
	if len(w) > 0 {
		s.pending = append(s.pending, segment{tx: append([]byte(nil), w...)})
	}
	if len(r) > 0 {
		s.pending = append(s.pending, segment{rx: r})
	}
	if release != End || len(s.pending) == 0 {
		return nil
	}

	segs := s.pending
	s.pending = nil
	if err := s.message(segs); err != nil {
		return fmt.Errorf("bus: %s: %w", s.f.Name(), err)
	}
	return nil
}

// message sends segs as one chip-select assertion.
func (s *Spidev) message(segs []segment) error {
	// Copy data into unmanaged buffer because the garbage collector may move
	// pointers at any time.
	bufSize := 0
	for _, t := range segs {
		bufSize += len(t.tx) + len(t.rx)
	}
	buf, err := unix.Mmap(-1, 0, bufSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return err
	}
	defer unix.Munmap(buf)

	it := make([]iocTransfer, 0, len(segs))
	off := 0
	for _, t := range segs {
		copy(buf[off:], t.tx)
		length := len(t.tx) + len(t.rx)
		ioc := iocTransfer{Length: uint32(length)}
		if len(t.tx) > 0 {
			ioc.TxBuf = uint64(uintptr(unsafe.Pointer(&buf[off])))
		}
		if len(t.rx) > 0 {
			ioc.RxBuf = uint64(uintptr(unsafe.Pointer(&buf[off])))
		}
		// CSChange stays 0: chip select is held between transfers and
		// released after the last one.
		it = append(it, ioc)
		off += length
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(),
		uintptr(iocMessage(len(it))),
		uintptr(unsafe.Pointer(&it[0]))); errno != 0 {
		return errno
	}

	// Copy out rx.
	off = 0
	for _, t := range segs {
		copy(t.rx, buf[off:off+len(t.rx)])
		off += len(t.tx) + len(t.rx)
	}
	return nil
}

// Mode returns the SPI mode flags.
func (s *Spidev) Mode() (uint32, error) {
	var m uint32
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), iocRdMode32, uintptr(unsafe.Pointer(&m)))
	return m, errnoErr(errno)
}

// SetMode sets the SPI mode flags.
func (s *Spidev) SetMode(m uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), iocWrMode32, uintptr(unsafe.Pointer(&m)))
	return errnoErr(errno)
}

// BitsPerWord returns the word size.
func (s *Spidev) BitsPerWord() (uint32, error) {
	var bpw uint8
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), iocRdBitsPerWord, uintptr(unsafe.Pointer(&bpw)))
	return uint32(bpw), errnoErr(errno)
}

// SetBitsPerWord sets the word size.
func (s *Spidev) SetBitsPerWord(bpw uint32) error {
	v := uint8(bpw)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), iocWrBitsPerWord, uintptr(unsafe.Pointer(&v)))
	return errnoErr(errno)
}

// SpeedHz gets the transfer speed.
func (s *Spidev) SpeedHz() (uint32, error) {
	var hz uint32
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), iocRdMaxSpeedHz, uintptr(unsafe.Pointer(&hz)))
	return hz, errnoErr(errno)
}

// SetSpeedHz sets the transfer speed.
func (s *Spidev) SetSpeedHz(hz uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), iocWrMaxSpeedHz, uintptr(unsafe.Pointer(&hz)))
	return errnoErr(errno)
}

func errnoErr(e unix.Errno) error {
	if e == 0 {
		return nil
	}
	return e
}
