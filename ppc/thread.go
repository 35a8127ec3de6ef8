package ppc

import (
	"fmt"

	"github.com/wnxd/psxmem/encoding"
	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/trap"
)

var _ trap.Thread = (*Thread)(nil)
var _ host.RegisterContext = (*Thread)(nil)

// Thread runs straight-line host code held in Code, mapped at CodeBase.
type Thread struct {
	State    ThreadState
	CodeBase uint64
	Code     []uint32
}

func NewThread(base uint64, code ...uint32) *Thread {
	return &Thread{State: ThreadState{SRR0: uint32(base)}, CodeBase: base, Code: code}
}

func (th *Thread) Arch() host.Arch {
	return host.ARCH_PPC
}

func (th *Thread) GetState(flavor host.Flavor, state []uint32) (int, error) {
	if flavor != PPC_THREAD_STATE {
		return 0, host.ErrFlavorUnsupported
	}
	stream := encoding.NewWordStream(state)
	if err := encoding.Encode(stream, &th.State); err != nil {
		return 0, err
	}
	return len(stream.Words()), nil
}

func (th *Thread) SetState(flavor host.Flavor, state []uint32) error {
	if flavor != PPC_THREAD_STATE {
		return host.ErrFlavorUnsupported
	}
	return encoding.Decode(encoding.NewWordStream(state), &th.State)
}

func (th *Thread) Fetch(addr uint64) (uint32, error) {
	if addr < th.CodeBase || addr&3 != 0 || (addr-th.CodeBase)/4 >= uint64(len(th.Code)) {
		return 0, fmt.Errorf("fetch %08X: %w", addr, ErrCodeRange)
	}
	return th.Code[(addr-th.CodeBase)/4], nil
}

func (th *Thread) RegRead(reg host.Reg) (uint64, error) {
	p := th.State.reg(reg)
	if p == nil {
		return 0, host.ErrRegInvalid
	}
	return uint64(*p), nil
}

func (th *Thread) RegWrite(reg host.Reg, value uint64) error {
	p := th.State.reg(reg)
	if p == nil {
		return host.ErrRegInvalid
	}
	*p = uint32(value)
	return nil
}
