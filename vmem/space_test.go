package vmem_test

import (
	"errors"
	"testing"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/internal/test"
	"github.com/wnxd/psxmem/trap"
	"github.com/wnxd/psxmem/vmem"
)

func spaces(t *testing.T, fn func(t *testing.T, s vmem.Space)) {
	for _, mode := range []vmem.Mirroring{vmem.MIRROR_MASK, vmem.MIRROR_HOST} {
		t.Run(mode.String(), func(t *testing.T) {
			s, err := vmem.New(mode)
			if errors.Is(err, vmem.ErrSetup) || errors.Is(err, vmem.ErrUnsupported) {
				t.Skipf("%s space: %v", mode, err)
			}
			if !test.ExpectSuccess(t, err) {
				return
			}
			t.Cleanup(func() { s.Close() })
			test.ExpectEquality(t, s.Mirroring(), mode)
			fn(t, s)
		})
	}
}

func expectFault(t *testing.T, err error, addr uint64, write bool) {
	t.Helper()
	var fault *trap.Fault
	if !errors.As(err, &fault) {
		t.Errorf("expected fault at %016X (got %v)", addr, err)
		return
	}
	test.ExpectEquality(t, fault.Addr, addr)
	test.ExpectEquality(t, fault.Write, write)
}

func TestMirrors(t *testing.T) {
	spaces(t, func(t *testing.T, s vmem.Space) {
		test.ExpectSuccess(t, s.Store(vmem.RAM_SIZE*2+0x100, 4, 0xaabbccdd))
		for i := range uint32(vmem.RAM_MIRRORS) {
			v, err := s.Load(i*vmem.RAM_SIZE+0x100, 4)
			test.ExpectSuccess(t, err)
			test.ExpectEquality(t, v, 0xaabbccdd)
		}
		v, err := s.Load(0x101, 1)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, uint32(s.Bytes()[idx(t, s, 0x101)]))
	})
}

func idx(t *testing.T, s vmem.Space, off uint32) int {
	t.Helper()
	i, ok := s.Canon(off)
	test.ExpectSuccess(t, ok)
	return i
}

func TestDefaultProtection(t *testing.T) {
	spaces(t, func(t *testing.T, s vmem.Space) {
		_, err := s.Load(vmem.ROM_OFFSET, 4)
		test.ExpectSuccess(t, err)
		expectFault(t, s.Store(vmem.ROM_OFFSET+8, 4, 1), s.Addr(vmem.ROM_OFFSET+8), true)

		test.ExpectSuccess(t, s.Store(vmem.PAR_OFFSET, 2, 0x1234))
		test.ExpectSuccess(t, s.Store(vmem.HW_OFFSET+0xffc, 4, 0x1234))

		_, err = s.Load(vmem.HW_OFFSET+vmem.SCRATCH_SIZE, 4)
		expectFault(t, err, s.Addr(vmem.HW_OFFSET+vmem.SCRATCH_SIZE), false)
		expectFault(t, s.Store(vmem.HW_OFFSET+0x1070, 4, 0), s.Addr(vmem.HW_OFFSET+0x1070), true)
		_, err = s.Load(0x1f400000, 1)
		expectFault(t, err, s.Addr(0x1f400000), false)
		expectFault(t, s.Store(vmem.RAM_EXTENT, 1, 0), s.Addr(vmem.RAM_EXTENT), true)

		_, ok := s.Canon(vmem.HW_OFFSET + vmem.SCRATCH_SIZE)
		test.ExpectFailure(t, ok)
	})
}

func TestProtect(t *testing.T) {
	spaces(t, func(t *testing.T, s vmem.Space) {
		test.ExpectSuccess(t, s.Protect(0, vmem.RAM_EXTENT, host.MEM_PROT_READ))
		off := uint32(vmem.RAM_SIZE*3 + 0x2010)
		expectFault(t, s.Store(off, 4, 1), s.Addr(off), true)
		_, err := s.Load(off, 4)
		test.ExpectSuccess(t, err)

		test.ExpectSuccess(t, s.Protect(vmem.RAM_SIZE*3+0x2000, 1, host.MEM_PROT_RW))
		test.ExpectSuccess(t, s.Store(off, 4, 1))
		expectFault(t, s.Store(0x2010, 4, 1), s.Addr(0x2010), true)

		test.ExpectError(t, s.Protect(vmem.WINDOW_SIZE-0x1000, 0x2000, host.MEM_PROT_RW), vmem.ErrRange)
		_, err = s.Load(0, 3)
		test.ExpectError(t, err, vmem.ErrSize)
	})
}

func TestRegions(t *testing.T) {
	spaces(t, func(t *testing.T, s vmem.Space) {
		want := []host.MemRegion{
			{Addr: s.Addr(0), Size: vmem.RAM_EXTENT, Prot: host.MEM_PROT_RW},
			{Addr: s.Addr(vmem.PAR_OFFSET), Size: vmem.PAR_SIZE, Prot: host.MEM_PROT_RW},
			{Addr: s.Addr(vmem.HW_OFFSET), Size: vmem.SCRATCH_SIZE, Prot: host.MEM_PROT_RW},
			{Addr: s.Addr(vmem.ROM_OFFSET), Size: vmem.ROM_SIZE, Prot: host.MEM_PROT_READ},
		}
		regions := s.Regions()
		if test.ExpectEquality(t, len(regions), len(want)) {
			for i := range want {
				test.ExpectEquality(t, regions[i], want[i])
			}
		}

		test.ExpectSuccess(t, s.Protect(0x1000, 0x1000, host.MEM_PROT_READ))
		test.ExpectEquality(t, len(s.Regions()), len(want)+2)
		test.ExpectSuccess(t, s.Regions()[1].Contains(s.Addr(0x1fff)))
	})
}

func TestOwns(t *testing.T) {
	spaces(t, func(t *testing.T, s vmem.Space) {
		off, ok := s.Owns(s.Addr(0x1234))
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, off, 0x1234)
		_, ok = s.Owns(s.Addr(0) - 1)
		test.ExpectFailure(t, ok)
		_, ok = s.Owns(s.Addr(0) + vmem.WINDOW_SIZE)
		test.ExpectFailure(t, ok)
	})
}

func TestClose(t *testing.T) {
	spaces(t, func(t *testing.T, s vmem.Space) {
		test.ExpectSuccess(t, s.Close())
		test.ExpectEquality(t, len(s.Bytes()), 0)
		test.ExpectSuccess(t, s.Close())
	})
}
