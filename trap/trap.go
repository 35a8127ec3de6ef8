// Package trap delivers host faults to a process-wide set of ports.
//
// A faulting goroutine describes the fault as a Trap and calls Raise, which
// blocks until the port registered for the trap kind replies. Ports are served
// by a single goroutine each, so traps reaching one port are handled strictly
// one at a time. SetPorts returns the previously installed ports, which the new
// owner keeps for forwarding and restores when it goes away.
package trap

import (
	"fmt"

	"github.com/wnxd/psxmem/host"
)

type Result int

const (
	// Result_Done means the trap was handled and the thread state, if any,
	// already reflects the faulting instruction.
	Result_Done Result = -1
	// Result_Next means nobody claimed the trap.
	Result_Next Result = 0
	// Result_Retry resumes the thread at the faulting instruction.
	Result_Retry Result = 1
)

func (r Result) String() string {
	switch r {
	case Result_Done:
		return "done"
	case Result_Next:
		return "next"
	case Result_Retry:
		return "retry"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Thread is the faulting execution context. Its state can be read and
// rewritten while the owner is blocked in Raise.
type Thread interface {
	host.StateContext
	Arch() host.Arch
	Fetch(addr uint64) (uint32, error)
}

type Trap struct {
	Kind   Kind
	Addr   uint64
	Write  bool
	Thread Thread
}

type Handler = func(t *Trap) Result
