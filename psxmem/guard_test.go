package psxmem_test

import (
	"math/bits"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/internal/test"
	"github.com/wnxd/psxmem/ppc"
	"github.com/wnxd/psxmem/psxmem"
	"github.com/wnxd/psxmem/vmem"
)

func stw(rs, ra uint32, d int16) uint32 {
	return 36<<26 | rs<<21 | ra<<16 | uint32(uint16(d))
}

func lhz(rd, ra uint32, d int16) uint32 {
	return 40<<26 | rd<<21 | ra<<16 | uint32(uint16(d))
}

func lbzu(rd, ra uint32, d int16) uint32 {
	return 35<<26 | rd<<21 | ra<<16 | uint32(uint16(d))
}

func xForm(rs, ra, rb, xo uint32) uint32 {
	return 31<<26 | rs<<21 | ra<<16 | rb<<11 | xo<<1
}

func lwz(rd, ra uint32, d int16) uint32 {
	return 32<<26 | rd<<21 | ra<<16 | uint32(uint16(d))
}

// fromHost32 turns a value loaded by a plain host word load into its guest
// value.
func fromHost32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

func stwbrx(rs, ra, rb uint32) uint32 { return xForm(rs, ra, rb, 662) }
func sthbrx(rs, ra, rb uint32) uint32 { return xForm(rs, ra, rb, 918) }

func run(t *testing.T, m *fixture, th *ppc.Thread) {
	t.Helper()
	if !test.ExpectSuccess(t, ppc.Run(th, m)) {
		t.Logf("thread state:\n%s", spew.Sdump(th.State))
	}
}

func TestLockNative(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, nil)
		m.cpu.recompiling = true

		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_LOCK)
		test.ExpectSuccess(t, m.Locked())
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_LOCK_ALT)
		test.ExpectSuccess(t, m.Locked())

		th := ppc.NewThread(0x10000, stwbrx(3, 0, 4), stwbrx(5, 0, 6))
		th.State.R[3] = 0x11223344
		th.State.R[4] = 0x80001000
		th.State.R[5] = 0x55667788
		th.State.R[6] = 0xa0201004
		run(t, m, th)
		test.ExpectEquality(t, th.State.SRR0, 0x10008)

		clears := m.cpu.cleared()
		if test.ExpectEquality(t, len(clears), 1) {
			test.ExpectEquality(t, clears[0], span{0x1000, vmem.PAGE_SIZE})
		}
		test.ExpectSuccess(t, m.Locked())
		test.ExpectEquality(t, m.Read32(0x00001000), 0x11223344)
		test.ExpectEquality(t, m.Read32(0x80601004), 0x55667788)

		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_UNLOCK)
		test.ExpectFailure(t, m.Locked())
		m.Write32(0x1000, 5)
		test.ExpectEquality(t, m.Read32(0x1000), 5)
		clears = m.cpu.cleared()
		if test.ExpectEquality(t, len(clears), 2) {
			test.ExpectEquality(t, clears[1], span{0x1000, 4})
		}
	})
}

func TestLockAccessors(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, nil)
		m.Write32(0x2000, 7)
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_LOCK)

		// interpreter with the cache isolated: stores vanish
		m.Write32(0x2000, 9)
		m.Write8(0x80002001, 9)
		test.ExpectEquality(t, m.Read32(0x2000), 7)
		test.ExpectEquality(t, len(m.cpu.cleared()), 0)

		m.cpu.recompiling = true
		m.Write32(0x80003000, 1)
		test.ExpectEquality(t, m.Read32(0x3000), 1)
		clears := m.cpu.cleared()
		if test.ExpectEquality(t, len(clears), 1) {
			test.ExpectEquality(t, clears[0], span{0x3000, vmem.PAGE_SIZE})
		}
		m.Write32(0x80003004, 2)
		clears = m.cpu.cleared()
		if test.ExpectEquality(t, len(clears), 2) {
			test.ExpectEquality(t, clears[1], span{0x80003004, 4})
		}

		m.cpu.recompiling = false
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_UNLOCK)
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_UNLOCK)
		test.ExpectFailure(t, m.Locked())
		m.Write32(0x2000, 9)
		test.ExpectEquality(t, m.Read32(0xa0202000), 9)
		test.ExpectEquality(t, m.Space().Regions()[0].Prot, host.MEM_PROT_RW)
	})
}

func TestProtectCode(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, nil)
		test.ExpectSuccess(t, m.ProtectCode(0x80205010))
		test.ExpectSuccess(t, m.ProtectCode(0x80005010))
		test.ExpectError(t, m.ProtectCode(0x1f000000), psxmem.ErrNotRAM)

		m.Write32(0x5010, 2)
		m.Write32(0x5014, 3)
		test.ExpectEquality(t, m.Read32(0xa0605010), 2)
		test.ExpectEquality(t, m.Read32(0x5014), 3)
		clears := m.cpu.cleared()
		if test.ExpectEquality(t, len(clears), 1) {
			test.ExpectEquality(t, clears[0], span{0x5000, vmem.PAGE_SIZE})
		}

		// code pages survive a lock cycle
		test.ExpectSuccess(t, m.ProtectCode(0x6000))
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_LOCK)
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_UNLOCK)
		th := ppc.NewThread(0x20000, stw(3, 4, 0))
		th.State.R[3] = 0x01020304
		th.State.R[4] = 0x00206000
		run(t, m, th)
		test.ExpectEquality(t, m.Read32(0x6000), 0x04030201)
		test.ExpectEquality(t, len(m.cpu.cleared()), 2)
	})
}
