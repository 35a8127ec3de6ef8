package host

type Reg int

type RegisterContext interface {
	RegRead(reg Reg) (uint64, error)
	RegWrite(reg Reg, value uint64) error
}

// Flavor selects a thread state layout, as exchanged by StateContext.
type Flavor int

// StateContext exchanges a whole register flavor as an array of 32-bit words.
type StateContext interface {
	GetState(flavor Flavor, state []uint32) (int, error)
	SetState(flavor Flavor, state []uint32) error
}
