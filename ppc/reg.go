package ppc

import "github.com/wnxd/psxmem/host"

const (
	PPC_REG_R0 host.Reg = iota
	PPC_REG_R1
	PPC_REG_R2
	PPC_REG_R3
	PPC_REG_R4
	PPC_REG_R5
	PPC_REG_R6
	PPC_REG_R7
	PPC_REG_R8
	PPC_REG_R9
	PPC_REG_R10
	PPC_REG_R11
	PPC_REG_R12
	PPC_REG_R13
	PPC_REG_R14
	PPC_REG_R15
	PPC_REG_R16
	PPC_REG_R17
	PPC_REG_R18
	PPC_REG_R19
	PPC_REG_R20
	PPC_REG_R21
	PPC_REG_R22
	PPC_REG_R23
	PPC_REG_R24
	PPC_REG_R25
	PPC_REG_R26
	PPC_REG_R27
	PPC_REG_R28
	PPC_REG_R29
	PPC_REG_R30
	PPC_REG_R31
	PPC_REG_SRR0
	PPC_REG_SRR1
	PPC_REG_CR
	PPC_REG_XER
	PPC_REG_LR
	PPC_REG_CTR
	PPC_REG_MQ
	PPC_REG_VRSAVE
	ppcRegMax

	PPC_REG_PC = PPC_REG_SRR0
	PPC_REG_SP = PPC_REG_R1
)

const (
	PPC_THREAD_STATE host.Flavor = 1
)

// ThreadState is the PPC_THREAD_STATE flavor: SRR0 holds the pc, SRR1 the
// machine state.
type ThreadState struct {
	SRR0   uint32
	SRR1   uint32
	R      [32]uint32
	CR     uint32
	XER    uint32
	LR     uint32
	CTR    uint32
	MQ     uint32
	VRSAVE uint32
}

// THREAD_STATE_COUNT is the flavor size in 32-bit words.
const THREAD_STATE_COUNT = 40

func (s *ThreadState) reg(reg host.Reg) *uint32 {
	switch {
	case reg >= PPC_REG_R0 && reg <= PPC_REG_R31:
		return &s.R[reg-PPC_REG_R0]
	case reg == PPC_REG_SRR0:
		return &s.SRR0
	case reg == PPC_REG_SRR1:
		return &s.SRR1
	case reg == PPC_REG_CR:
		return &s.CR
	case reg == PPC_REG_XER:
		return &s.XER
	case reg == PPC_REG_LR:
		return &s.LR
	case reg == PPC_REG_CTR:
		return &s.CTR
	case reg == PPC_REG_MQ:
		return &s.MQ
	case reg == PPC_REG_VRSAVE:
		return &s.VRSAVE
	}
	return nil
}
