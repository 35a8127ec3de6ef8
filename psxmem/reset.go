package psxmem

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/vmem"
)

// Reset clears guest memory and reloads the BIOS.
func (m *Memory) Reset() {
	if m.space == nil {
		m.log.Warn("reset before init", "err", ErrNotInitialized)
		return
	}
	m.mu.Lock()
	if err := m.space.Protect(vmem.RAM_OFFSET, vmem.RAM_EXTENT, host.MEM_PROT_RW); err != nil {
		m.log.Error("reset RAM protection", "err", err)
	}
	if err := m.space.Protect(vmem.ROM_OFFSET, vmem.ROM_SIZE, host.MEM_PROT_RW); err != nil {
		m.log.Error("reset ROM protection", "err", err)
	}
	clear(m.codePages)
	m.code.Store(0)
	m.mu.Unlock()
	m.unlock()

	clear(m.region(vmem.RAM_OFFSET, vmem.RAM_SIZE))
	clear(m.region(vmem.PAR_OFFSET, vmem.PAR_SIZE))
	clear(m.region(vmem.HW_OFFSET, vmem.SCRATCH_SIZE))

	rom := m.region(vmem.ROM_OFFSET, vmem.ROM_SIZE)
	if m.loadBios(rom) {
		m.cfg.HLE = false
		m.mu.Lock()
		if err := m.space.Protect(vmem.ROM_OFFSET, vmem.ROM_SIZE, host.MEM_PROT_READ); err != nil {
			m.log.Error("protect ROM", "err", err)
		}
		m.mu.Unlock()
		return
	}
	clear(rom)
	m.cfg.HLE = true
}

// loadBios copies the image into rom, reporting false when HLE has to take
// over.
func (m *Memory) loadBios(rom []byte) bool {
	if m.cfg.Bios == BIOS_HLE {
		return false
	}
	path := filepath.Join(m.cfg.BiosDir, m.cfg.Bios)
	f, err := os.Open(path)
	if err != nil {
		m.log.Warn("could not open BIOS, enabling HLE", "path", path, "err", err)
		return false
	}
	defer f.Close()
	n, err := io.ReadFull(f, rom)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF):
		m.log.Warn("short BIOS image", "path", path, "size", n)
		clear(rom[n:])
	default:
		m.log.Warn("could not read BIOS, enabling HLE", "path", path, "err", err)
		return false
	}
	m.log.Info("BIOS loaded", "path", path)
	return true
}

func (m *Memory) region(off uint32, size int) []byte {
	idx, _ := m.space.Canon(off)
	return m.space.Bytes()[idx : idx+size]
}
