package psxmem

import (
	"errors"
	"unsafe"

	"github.com/wnxd/psxmem/trap"
	"github.com/wnxd/psxmem/vmem"
)

// maxRetries bounds how often a guarded access is resumed after a trap.
const maxRetries = 8

// registerOffset reports the window offset of addr when it falls in the
// register part of the hardware window, in any segment. Devices are always
// addressed by window offset.
func registerOffset(addr uint32) (uint32, bool) {
	off := addr & vmem.WINDOW_MASK
	return off, vmem.AreaOf(off) == vmem.AREA_REGISTERS
}

func (m *Memory) Read8(addr uint32) uint8 {
	if off, ok := registerOffset(addr); ok {
		return m.regs.Read8(off)
	}
	if e := m.read[addr>>TABLE_SHIFT]; e.Valid() {
		return *m.at(e, addr)
	}
	return uint8(m.guardedLoad(addr, 1))
}

func (m *Memory) Read16(addr uint32) uint16 {
	addr &^= 1
	if off, ok := registerOffset(addr); ok {
		return m.regs.Read16(off)
	}
	if e := m.read[addr>>TABLE_SHIFT]; e.Valid() {
		return fromGuest16(*(*uint16)(unsafe.Pointer(m.at(e, addr))))
	}
	return uint16(m.guardedLoad(addr, 2))
}

func (m *Memory) Read32(addr uint32) uint32 {
	addr &^= 3
	if off, ok := registerOffset(addr); ok {
		return m.regs.Read32(off)
	}
	if e := m.read[addr>>TABLE_SHIFT]; e.Valid() {
		return fromGuest32(*(*uint32)(unsafe.Pointer(m.at(e, addr))))
	}
	return m.guardedLoad(addr, 4)
}

func (m *Memory) Write8(addr uint32, v uint8) {
	if off, ok := registerOffset(addr); ok {
		m.regs.Write8(off, v)
		return
	}
	if m.store(addr, 1, uint32(v)) {
		return
	}
	m.writeMiss(addr, 1, uint32(v))
}

func (m *Memory) Write16(addr uint32, v uint16) {
	addr &^= 1
	if off, ok := registerOffset(addr); ok {
		m.regs.Write16(off, v)
		return
	}
	if m.store(addr, 2, uint32(toGuest16(v))) {
		return
	}
	m.writeMiss(addr, 2, uint32(v))
}

func (m *Memory) Write32(addr uint32, v uint32) {
	addr &^= 3
	if off, ok := registerOffset(addr); ok {
		m.regs.Write32(off, v)
		return
	}
	if m.store(addr, 4, toGuest32(v)) {
		return
	}
	if addr == CACHE_CONTROL {
		m.cacheControl(v)
		return
	}
	m.writeMiss(addr, 4, v)
}

// Pointer returns the storage from addr to the end of its region. Register
// space, unbacked addresses and an uninitialized memory give nil.
func (m *Memory) Pointer(addr uint32) []byte {
	if m.space == nil {
		return nil
	}
	off := addr & vmem.WINDOW_MASK
	idx, ok := m.space.Canon(off)
	if !ok {
		return nil
	}
	var rest int
	switch vmem.AreaOf(off) {
	case vmem.AREA_RAM:
		rest = vmem.RAM_SIZE - int(off&vmem.RAM_MASK)
	case vmem.AREA_PAR:
		rest = vmem.PAR_SIZE - int(off-vmem.PAR_OFFSET)
	case vmem.AREA_SCRATCH:
		rest = vmem.SCRATCH_SIZE - int(off-vmem.HW_OFFSET)
	case vmem.AREA_ROM:
		rest = vmem.ROM_SIZE - int(off-vmem.ROM_OFFSET)
	}
	return m.space.Bytes()[idx : idx+rest : idx+rest]
}

func (m *Memory) at(e Entry, addr uint32) *byte {
	return &m.space.Bytes()[e.Index()+int(addr&(1<<TABLE_SHIFT-1))]
}

// store writes a guest-order value through the write table, reporting false
// when addr misses it. RAM entries and their page protections change under
// m.mu, so RAM stores hold it shared.
func (m *Memory) store(addr uint32, size int, raw uint32) bool {
	idx := addr >> TABLE_SHIFT
	if !isRAMIndex(idx) {
		e := m.write[idx]
		if !e.Valid() {
			return false
		}
		storeRaw(m.at(e, addr), size, raw)
		return true
	}
	m.mu.RLock()
	e := m.write[idx]
	ok := e.Valid() && m.code.Load() == 0
	if ok {
		storeRaw(m.at(e, addr), size, raw)
	}
	m.mu.RUnlock()
	if ok {
		m.written(addr)
	}
	return ok
}

func storeRaw(p *byte, size int, raw uint32) {
	switch size {
	case 1:
		*p = uint8(raw)
	case 2:
		*(*uint16)(unsafe.Pointer(p)) = uint16(raw)
	default:
		*(*uint32)(unsafe.Pointer(p)) = raw
	}
}

func (m *Memory) written(addr uint32) {
	if m.cpu.Recompiling() {
		m.cpu.Clear(addr&^3, 4)
	}
}

func (m *Memory) writeMiss(addr uint32, size int, v uint32) {
	if !isRAMIndex(addr >> TABLE_SHIFT) {
		m.unmapped("write", addr)
		return
	}
	if m.locked.Load() && !m.cpu.Recompiling() {
		// Cache isolated.
		return
	}
	ok, retried := m.guardedStore(addr, size, v)
	if !ok {
		m.unmapped("write", addr)
	} else if !retried {
		// A retried store followed a page unlock, which already invalidated
		// the whole page.
		m.written(addr)
	}
}

// guardedLoad and guardedStore hold m.mu shared only for the access itself,
// the trap handler takes it exclusively to change protections.
func (m *Memory) guardedLoad(addr uint32, size int) uint32 {
	off := addr & vmem.WINDOW_MASK
	for range maxRetries {
		m.mu.RLock()
		raw, err := m.space.Load(off, size)
		m.mu.RUnlock()
		if err == nil {
			return fromGuest(raw, size)
		} else if !m.raise(err) {
			break
		}
	}
	m.unmapped("read", addr)
	return 0
}

// guardedStore reports whether the store landed and whether it needed a
// retry to get there.
func (m *Memory) guardedStore(addr uint32, size int, v uint32) (ok, retried bool) {
	off := addr & vmem.WINDOW_MASK
	for i := range maxRetries {
		m.mu.RLock()
		err := m.space.Store(off, size, toGuest(v, size))
		m.mu.RUnlock()
		if err == nil {
			return true, i > 0
		} else if !m.raise(err) {
			break
		}
	}
	return false, false
}

// raise turns a guarded access fault into a trap and reports whether the
// access should be resumed.
func (m *Memory) raise(err error) bool {
	var fault *trap.Fault
	if !errors.As(err, &fault) {
		m.log.Error("guarded access", "err", err)
		return false
	}
	return trap.Raise(fault.Trap(nil)) == trap.Result_Retry
}
