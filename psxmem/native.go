package psxmem

import "github.com/wnxd/psxmem/vmem"

// HostLoad performs a native load at a guest effective address, the way
// translated code reaches memory. Faults are returned for the caller to raise.
func (m *Memory) HostLoad(ea uint32, size int) (uint32, error) {
	m.mu.RLock()
	raw, err := m.space.Load(ea&vmem.WINDOW_MASK, size)
	m.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	return fromGuest(raw, size), nil
}

func (m *Memory) HostStore(ea uint32, size int, v uint32) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.space.Store(ea&vmem.WINDOW_MASK, size, toGuest(v, size))
}
