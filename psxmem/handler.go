package psxmem

import (
	"fmt"

	"github.com/wnxd/psxmem/encoding"
	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/ppc"
	"github.com/wnxd/psxmem/trap"
	"github.com/wnxd/psxmem/vmem"
)

// handleTrap runs on the listener goroutine while the faulting goroutine
// waits in trap.Raise.
func (m *Memory) handleTrap(t *trap.Trap) trap.Result {
	if t.Kind != trap.EXC_BAD_ACCESS {
		return m.forward(t)
	}
	off, ok := m.space.Owns(t.Addr)
	if !ok {
		return m.forward(t)
	}
	if t.Write && off < vmem.RAM_EXTENT && m.lazyUnlock(off) {
		return trap.Result_Retry
	}
	if t.Thread == nil {
		return trap.Result_Done
	}
	return m.emulate(t, off)
}

func (m *Memory) forward(t *trap.Trap) trap.Result {
	if l := m.listener.Load(); l != nil {
		return l.Forward(t)
	}
	return trap.Result_Next
}

// emulate performs the faulting load or store on behalf of the thread and
// moves it past the instruction.
func (m *Memory) emulate(t *trap.Trap, off uint32) trap.Result {
	if arch := t.Thread.Arch(); arch != host.ARCH_PPC {
		m.log.Warn("foreign thread", "arch", arch.String(), "err", host.ErrArchUnsupported)
		return m.forward(t)
	}
	var words [ppc.THREAD_STATE_COUNT]uint32
	n, err := t.Thread.GetState(ppc.PPC_THREAD_STATE, words[:])
	if err != nil {
		m.fatal(fmt.Errorf("get thread state: %w", err))
		return trap.Result_Done
	}
	var state ppc.ThreadState
	if err = encoding.Decode(encoding.NewWordStream(words[:n]), &state); err != nil {
		m.fatal(fmt.Errorf("decode thread state: %w", err))
		return trap.Result_Done
	}
	instr, err := t.Thread.Fetch(uint64(state.SRR0))
	if err != nil {
		m.log.Warn("fetch faulting instruction", "pc", fmt.Sprintf("%08X", state.SRR0), "err", err)
		return m.forward(t)
	}
	a, err := ppc.Decode(instr)
	if err != nil {
		return m.forward(t)
	}
	ea := a.EffectiveAddress(&state)
	switch {
	case vmem.AreaOf(off) == vmem.AREA_REGISTERS:
		m.emulateRegister(&state, a, off)
	case a.Store && a.Size == 4 && ea == CACHE_CONTROL:
		m.cacheControl(a.ToGuest(state.R[a.Reg]))
	case a.Store:
		m.unmapped("write", ea)
	default:
		state.R[a.Reg] = 0
		m.unmapped("read", ea)
	}
	a.Complete(&state, ea)
	stream := encoding.NewWordStream(words[:])
	if err = encoding.Encode(stream, &state); err != nil {
		m.fatal(fmt.Errorf("encode thread state: %w", err))
		return trap.Result_Done
	}
	if err = t.Thread.SetState(ppc.PPC_THREAD_STATE, stream.Words()); err != nil {
		m.fatal(fmt.Errorf("set thread state: %w", err))
	}
	return trap.Result_Done
}

func (m *Memory) emulateRegister(s *ppc.ThreadState, a ppc.Access, addr uint32) {
	if a.Store {
		v := a.ToGuest(s.R[a.Reg])
		switch a.Size {
		case 1:
			m.regs.Write8(addr, uint8(v))
		case 2:
			m.regs.Write16(addr, uint16(v))
		default:
			m.regs.Write32(addr, v)
		}
		return
	}
	var v uint32
	switch a.Size {
	case 1:
		v = uint32(m.regs.Read8(addr))
	case 2:
		v = uint32(m.regs.Read16(addr))
	default:
		v = m.regs.Read32(addr)
	}
	s.R[a.Reg] = a.FromGuest(v)
}
