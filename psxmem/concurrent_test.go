package psxmem_test

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/wnxd/psxmem/internal/test"
	"github.com/wnxd/psxmem/ppc"
	"github.com/wnxd/psxmem/psxmem"
	"github.com/wnxd/psxmem/vmem"
)

func TestConcurrentGuests(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, nil)
		var g errgroup.Group
		for w := range uint32(4) {
			g.Go(func() error {
				base := 0x80000000 + w*0x10000
				for i := range uint32(256) {
					m.Write32(base+i*4, w<<16|i)
				}
				for i := range uint32(256) {
					if v := m.Read32(base + vmem.RAM_SIZE + i*4); v != w<<16|i {
						return fmt.Errorf("worker %d word %d: %08X", w, i, v)
					}
					if v := m.Read32(0x1f400000); v != 0 {
						return fmt.Errorf("worker %d unmapped read: %08X", w, v)
					}
				}
				return nil
			})
		}
		g.Go(func() error {
			th := ppc.NewThread(0x70000, stw(3, 4, 0), stw(3, 4, 4), stw(3, 4, 8))
			th.State.R[4] = 0x1f400000
			return ppc.Run(th, m)
		})
		test.ExpectSuccess(t, g.Wait())
	})
}

func TestLockToggle(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, nil)
		var g errgroup.Group
		g.Go(func() error {
			for range 200 {
				m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_LOCK)
				m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_UNLOCK)
			}
			return nil
		})
		for w := range uint32(2) {
			g.Go(func() error {
				base := 0x80010000 + w*0x10000
				for i := range uint32(2000) {
					m.Write32(base+(i%1024)*4, i)
					m.Write8(base+0x2000+i%1024, uint8(i))
				}
				return nil
			})
		}
		test.ExpectSuccess(t, g.Wait())

		test.ExpectFailure(t, m.Locked())
		m.Write32(0x10000, 0x1234)
		test.ExpectEquality(t, m.Read32(0x80210000), 0x1234)
		test.ExpectEquality(t, len(m.cpu.cleared()), 0)
	})
}
