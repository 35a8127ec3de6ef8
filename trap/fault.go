package trap

import (
	"fmt"
	"runtime/debug"
)

// Fault is a host-level access violation captured by Catch or synthesized by
// a space that tracks protections itself.
type Fault struct {
	Addr  uint64
	Write bool
}

func (f *Fault) Error() string {
	op := "read"
	if f.Write {
		op = "write"
	}
	return fmt.Sprintf("host fault: %s at %016X", op, f.Addr)
}

// Trap describes the fault as a bad-access trap raised by thread.
func (f *Fault) Trap(thread Thread) *Trap {
	return &Trap{Kind: EXC_BAD_ACCESS, Addr: f.Addr, Write: f.Write, Thread: thread}
}

type addressError interface {
	error
	Addr() uintptr
}

// Catch runs fn with faults on non-nil addresses turned into a *Fault. Other
// panics propagate unchanged.
func Catch(write bool, fn func()) (err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if ex := recover(); ex != nil {
			if ae, ok := ex.(addressError); ok {
				err = &Fault{Addr: uint64(ae.Addr()), Write: write}
				return
			}
			panic(ex)
		}
	}()
	fn()
	return nil
}
