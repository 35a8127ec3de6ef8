// Package ppc models the host side of translated code: the PowerPC integer
// load/store forms the recompiler emits, the thread state flavor a trap
// handler rewrites, and a Thread that executes those instructions against a
// Memory.
package ppc

import (
	"errors"
	"fmt"

	"github.com/wnxd/psxmem/trap"
)

var ErrCodeRange = errors.New("pc outside code")

// maxRetries bounds how often one instruction is resumed after a trap.
const maxRetries = 16

// Memory performs native accesses at guest effective addresses. Values are in
// guest order.
type Memory interface {
	HostLoad(ea uint32, size int) (uint32, error)
	HostStore(ea uint32, size int, v uint32) error
}

// Step executes the instruction at SRR0. A native fault is raised as a trap
// on the calling goroutine and the instruction is retried, skipped or
// reported depending on the reply.
func Step(th *Thread, mem Memory) error {
	instr, err := th.Fetch(uint64(th.State.SRR0))
	if err != nil {
		return err
	}
	a, err := Decode(instr)
	if err != nil {
		return err
	}
	var t *trap.Trap
	for range maxRetries {
		err = execute(th, mem, a)
		var fault *trap.Fault
		if !errors.As(err, &fault) {
			return err
		}
		t = fault.Trap(th)
		switch trap.Raise(t) {
		case trap.Result_Retry:
			continue
		case trap.Result_Done:
			return nil
		}
		break
	}
	return fmt.Errorf("pc %08X: %w", th.State.SRR0, trap.NewUnhandledException(t))
}

// Run steps until the pc leaves the code or a step fails.
func Run(th *Thread, mem Memory) error {
	for th.State.SRR0 >= uint32(th.CodeBase) && uint64(th.State.SRR0-uint32(th.CodeBase))/4 < uint64(len(th.Code)) {
		if err := Step(th, mem); err != nil {
			return err
		}
	}
	return nil
}

func execute(th *Thread, mem Memory, a Access) error {
	s := &th.State
	ea := a.EffectiveAddress(s)
	if a.Store {
		if err := mem.HostStore(ea, a.Size, a.ToGuest(s.R[a.Reg])); err != nil {
			return err
		}
	} else {
		v, err := mem.HostLoad(ea, a.Size)
		if err != nil {
			return err
		}
		s.R[a.Reg] = a.FromGuest(v)
	}
	a.Complete(s, ea)
	return nil
}

// Complete applies the update-form base writeback and moves past the
// instruction.
func (a Access) Complete(s *ThreadState, ea uint32) {
	if a.Update && a.Base != 0 {
		s.R[a.Base] = ea
	}
	s.SRR0 += 4
}
