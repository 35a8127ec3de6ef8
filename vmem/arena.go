package vmem

import (
	"unsafe"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/trap"
)

// Arena buffer layout.
const (
	arenaRAM     = 0
	arenaPAR     = arenaRAM + RAM_SIZE
	arenaScratch = arenaPAR + PAR_SIZE
	arenaROM     = arenaScratch + SCRATCH_SIZE
	arenaSize    = arenaROM + ROM_SIZE
)

type arena struct {
	buf   []byte
	pages pageTable
}

// NewArena returns a space that folds mirrors with masks instead of host
// mappings.
func NewArena() Space {
	a := &arena{
		buf:   make([]byte, arenaSize),
		pages: newPageTable(),
	}
	if err := protectDefault(a); err != nil {
		panic(err)
	}
	return a
}

func (a *arena) Close() error {
	a.buf = nil
	return nil
}

func (a *arena) Mirroring() Mirroring {
	return MIRROR_MASK
}

func (a *arena) PageSize() uint64 {
	return PAGE_SIZE
}

func (a *arena) Bytes() []byte {
	return a.buf
}

func (a *arena) Canon(off uint32) (int, bool) {
	switch AreaOf(off) {
	case AREA_RAM:
		return arenaRAM + int(off&RAM_MASK), true
	case AREA_PAR:
		return arenaPAR + int(off-PAR_OFFSET), true
	case AREA_SCRATCH:
		return arenaScratch + int(off-HW_OFFSET), true
	case AREA_ROM:
		return arenaROM + int(off-ROM_OFFSET), true
	}
	return 0, false
}

func (a *arena) Protect(off, size uint32, prot host.MemProt) error {
	off, size, err := span(off, size)
	if err != nil {
		return err
	}
	a.pages.set(off, size, prot)
	return nil
}

func (a *arena) Regions() []host.MemRegion {
	return a.pages.regions(a.Addr)
}

func (a *arena) locate(off uint32, size int, prot host.MemProt) (unsafe.Pointer, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	fault := &trap.Fault{Addr: a.Addr(off), Write: prot&host.MEM_PROT_WRITE != 0}
	if off > WINDOW_SIZE-uint32(size) || !a.pages.allows(off, size, prot) {
		return nil, fault
	}
	idx, ok := a.Canon(off)
	if !ok || idx+size > len(a.buf) {
		return nil, fault
	}
	return unsafe.Pointer(&a.buf[idx]), nil
}

func (a *arena) Load(off uint32, size int) (uint32, error) {
	p, err := a.locate(off, size, host.MEM_PROT_READ)
	if err != nil {
		return 0, err
	}
	return loadRaw(p, size), nil
}

func (a *arena) Store(off uint32, size int, raw uint32) error {
	p, err := a.locate(off, size, host.MEM_PROT_WRITE)
	if err != nil {
		return err
	}
	storeRaw(p, size, raw)
	return nil
}

func (a *arena) Addr(off uint32) uint64 {
	return uint64(uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))) + uint64(off)
}

func (a *arena) Owns(addr uint64) (uint32, bool) {
	off := addr - a.Addr(0)
	return uint32(off), off < WINDOW_SIZE
}

func loadRaw(p unsafe.Pointer, size int) uint32 {
	switch size {
	case 1:
		return uint32(*(*uint8)(p))
	case 2:
		return uint32(*(*uint16)(p))
	}
	return *(*uint32)(p)
}

func storeRaw(p unsafe.Pointer, size int, raw uint32) {
	switch size {
	case 1:
		*(*uint8)(p) = uint8(raw)
	case 2:
		*(*uint16)(p) = uint16(raw)
	default:
		*(*uint32)(p) = raw
	}
}
