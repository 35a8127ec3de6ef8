//go:build linux

package vmem

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/trap"
)

const maxReservations = 8

type hostSpace struct {
	fd    int
	base  unsafe.Pointer
	buf   []byte
	pages pageTable
}

func hostAliasing() bool {
	return unix.Getpagesize() == PAGE_SIZE
}

func newHostSpace() (Space, error) {
	if !hostAliasing() {
		return nil, setupError("page size", ErrUnsupported)
	}
	base, err := reserve()
	if err != nil {
		return nil, setupError("reserve", err)
	}
	s := &hostSpace{fd: -1, base: base, pages: newPageTable()}
	if err = s.alias(); err != nil {
		s.Close()
		return nil, err
	}
	s.buf = unsafe.Slice((*byte)(base), WINDOW_SIZE)
	if err = protectDefault(s); err != nil {
		s.Close()
		return nil, setupError("protect", err)
	}
	return s, nil
}

// reserve maps windows until the host refuses and keeps the last one.
func reserve() (unsafe.Pointer, error) {
	var windows []unsafe.Pointer
	var err error
	for range maxReservations {
		var p unsafe.Pointer
		p, err = unix.MmapPtr(-1, 0, nil, WINDOW_SIZE, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_NORESERVE)
		if err != nil {
			break
		}
		windows = append(windows, p)
	}
	if len(windows) == 0 {
		return nil, err
	}
	last := len(windows) - 1
	for _, p := range windows[:last] {
		unix.MunmapPtr(p, WINDOW_SIZE)
	}
	return windows[last], nil
}

// alias maps the RAM backing store over the head of the reservation once per
// mirror. The rest of the reservation stays inaccessible.
func (s *hostSpace) alias() error {
	fd, err := unix.MemfdCreate("psxmem-ram", unix.MFD_CLOEXEC)
	if err != nil {
		return setupError("memfd", err)
	}
	s.fd = fd
	if err = unix.Ftruncate(fd, RAM_SIZE); err != nil {
		return setupError("ftruncate", err)
	}
	for i := range RAM_MIRRORS {
		addr := unsafe.Add(s.base, i*RAM_SIZE)
		_, err = unix.MmapPtr(fd, 0, addr, RAM_SIZE, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_FIXED)
		if err != nil {
			return setupError("mirror", err)
		}
	}
	return nil
}

func (s *hostSpace) Close() error {
	var err error
	if s.base != nil {
		err = unix.MunmapPtr(s.base, WINDOW_SIZE)
		s.base = nil
		s.buf = nil
	}
	if s.fd >= 0 {
		if cerr := unix.Close(s.fd); err == nil {
			err = cerr
		}
		s.fd = -1
	}
	return err
}

func (s *hostSpace) Mirroring() Mirroring {
	return MIRROR_HOST
}

func (s *hostSpace) PageSize() uint64 {
	return uint64(unix.Getpagesize())
}

func (s *hostSpace) Bytes() []byte {
	return s.buf
}

func (s *hostSpace) Canon(off uint32) (int, bool) {
	if AreaOf(off) == AREA_NONE || AreaOf(off) == AREA_REGISTERS {
		return 0, false
	}
	return int(off), true
}

func (s *hostSpace) Protect(off, size uint32, prot host.MemProt) error {
	off, size, err := span(off, size)
	if err != nil {
		return err
	}
	b := unsafe.Slice((*byte)(unsafe.Add(s.base, off)), size)
	if err = unix.Mprotect(b, unixProt(prot)); err != nil {
		return err
	}
	s.pages.set(off, size, prot)
	return nil
}

func (s *hostSpace) Regions() []host.MemRegion {
	return s.pages.regions(s.Addr)
}

func (s *hostSpace) Load(off uint32, size int) (raw uint32, err error) {
	if err = checkSize(size); err != nil {
		return 0, err
	} else if off > WINDOW_SIZE-uint32(size) {
		return 0, &trap.Fault{Addr: s.Addr(off)}
	}
	p := unsafe.Add(s.base, off)
	err = trap.Catch(false, func() {
		raw = loadRaw(p, size)
	})
	return raw, err
}

func (s *hostSpace) Store(off uint32, size int, raw uint32) error {
	if err := checkSize(size); err != nil {
		return err
	} else if off > WINDOW_SIZE-uint32(size) {
		return &trap.Fault{Addr: s.Addr(off), Write: true}
	}
	p := unsafe.Add(s.base, off)
	return trap.Catch(true, func() {
		storeRaw(p, size, raw)
	})
}

func (s *hostSpace) Addr(off uint32) uint64 {
	return uint64(uintptr(s.base)) + uint64(off)
}

func (s *hostSpace) Owns(addr uint64) (uint32, bool) {
	off := addr - s.Addr(0)
	return uint32(off), off < WINDOW_SIZE
}

func unixProt(prot host.MemProt) int {
	var p int
	if prot&host.MEM_PROT_READ != 0 {
		p |= unix.PROT_READ
	}
	if prot&host.MEM_PROT_WRITE != 0 {
		p |= unix.PROT_WRITE
	}
	if prot&host.MEM_PROT_EXEC != 0 {
		p |= unix.PROT_EXEC
	}
	return p
}
