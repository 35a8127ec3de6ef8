package psxmem

import (
	"fmt"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/vmem"
)

// Cache control port and the values the BIOS writes to isolate the cache.
const (
	CACHE_CONTROL  = 0xfffe0130
	CACHE_LOCK     = 0x00000800
	CACHE_LOCK_ALT = 0x00000804
	CACHE_UNLOCK   = 0x0001e988
)

func (m *Memory) cacheControl(v uint32) {
	switch v {
	case CACHE_LOCK, CACHE_LOCK_ALT:
		m.lock()
	case CACHE_UNLOCK:
		m.unlock()
	default:
		m.log.Debug("cache control", "value", fmt.Sprintf("%08X", v))
	}
}

// lock drops RAM from the write tables and makes every mirror read-only.
func (m *Memory) lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked.Swap(true) {
		return
	}
	m.write.clearRAM()
	if err := m.space.Protect(vmem.RAM_OFFSET, vmem.RAM_EXTENT, host.MEM_PROT_READ); err != nil {
		m.log.Error("lock RAM", "err", err)
	}
}

func (m *Memory) unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.locked.Load() {
		return
	}
	if err := m.space.Protect(vmem.RAM_OFFSET, vmem.RAM_EXTENT, host.MEM_PROT_RW); err != nil {
		m.log.Error("unlock RAM", "err", err)
	}
	for page := range m.codePages {
		if err := m.protectPage(page, host.MEM_PROT_READ); err != nil {
			m.log.Error("protect code page", "page", fmt.Sprintf("%08X", page), "err", err)
		}
	}
	m.write.copyRAM(m.read)
	m.locked.Store(false)
}

// lazyUnlock makes a faulting RAM page writable again if the fault came from
// the write guard. Reports whether the store should be retried.
func (m *Memory) lazyUnlock(off uint32) bool {
	page := vmem.PageOf(off & vmem.RAM_MASK)
	m.mu.Lock()
	defer m.mu.Unlock()
	_, code := m.codePages[page]
	if !code && !(m.locked.Load() && m.cpu.Recompiling()) {
		return false
	}
	if err := m.protectPage(page, host.MEM_PROT_RW); err != nil {
		m.log.Error("unlock page", "page", fmt.Sprintf("%08X", page), "err", err)
		return false
	}
	if code {
		delete(m.codePages, page)
		m.code.Store(int32(len(m.codePages)))
	}
	m.cpu.Clear(page, vmem.PAGE_SIZE)
	return true
}

func (m *Memory) protectPage(page uint32, prot host.MemProt) error {
	size := uint32(m.space.PageSize())
	for i := range uint32(vmem.RAM_MIRRORS) {
		if err := m.space.Protect(i*vmem.RAM_SIZE+page, size, prot); err != nil {
			return err
		}
	}
	return nil
}
