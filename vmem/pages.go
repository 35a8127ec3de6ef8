package vmem

import "github.com/wnxd/psxmem/host"

// pageTable records the protection of every window page.
type pageTable []uint8

func newPageTable() pageTable {
	return make(pageTable, WINDOW_SIZE/PAGE_SIZE)
}

// span page-aligns [off, off+size) and checks it lies inside the window.
func span(off, size uint32) (uint32, uint32, error) {
	begin := uint64(AlignDown(off, PAGE_SIZE))
	end := Align(uint64(off)+uint64(size), PAGE_SIZE)
	if end > WINDOW_SIZE || end <= begin {
		return 0, 0, ErrRange
	}
	return uint32(begin), uint32(end - begin), nil
}

func (pt pageTable) set(off, size uint32, prot host.MemProt) {
	for page := off / PAGE_SIZE; page < (off+size)/PAGE_SIZE; page++ {
		pt[page] = uint8(prot)
	}
}

func (pt pageTable) get(off uint32) host.MemProt {
	return host.MemProt(pt[off/PAGE_SIZE])
}

func (pt pageTable) allows(off uint32, size int, prot host.MemProt) bool {
	if pt.get(off)&prot == 0 {
		return false
	}
	last := off + uint32(size) - 1
	return last/PAGE_SIZE == off/PAGE_SIZE || pt.get(last)&prot != 0
}

func (pt pageTable) regions(addr func(uint32) uint64) []host.MemRegion {
	var regions []host.MemRegion
	for page := 0; page < len(pt); {
		prot := host.MemProt(pt[page])
		begin := page
		for page < len(pt) && host.MemProt(pt[page]) == prot {
			page++
		}
		if prot == host.MEM_PROT_NONE {
			continue
		}
		regions = append(regions, host.MemRegion{
			Addr: addr(uint32(begin * PAGE_SIZE)),
			Size: uint64(page-begin) * PAGE_SIZE,
			Prot: prot,
		})
	}
	return regions
}

// protectDefault applies the protections every fresh space starts with.
func protectDefault(s Space) error {
	steps := []struct {
		off, size uint32
		prot      host.MemProt
	}{
		{0, WINDOW_SIZE, host.MEM_PROT_NONE},
		{RAM_OFFSET, RAM_EXTENT, host.MEM_PROT_RW},
		{PAR_OFFSET, PAR_SIZE, host.MEM_PROT_RW},
		{HW_OFFSET, SCRATCH_SIZE, host.MEM_PROT_RW},
		{ROM_OFFSET, ROM_SIZE, host.MEM_PROT_READ},
	}
	for _, step := range steps {
		if err := s.Protect(step.off, step.size, step.prot); err != nil {
			return err
		}
	}
	return nil
}
