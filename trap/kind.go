package trap

type Kind int

const (
	EXC_BAD_ACCESS Kind = iota + 1
	EXC_BAD_INSTRUCTION
	EXC_ARITHMETIC
	EXC_BREAKPOINT
	kindMax
)

func (k Kind) String() string {
	switch k {
	case EXC_BAD_ACCESS:
		return "BadAccess"
	case EXC_BAD_INSTRUCTION:
		return "BadInstruction"
	case EXC_ARITHMETIC:
		return "Arithmetic"
	case EXC_BREAKPOINT:
		return "Breakpoint"
	}
	return "Unknown"
}

func (k Kind) Mask() Mask {
	return 1 << k
}

type Mask uint32

const (
	EXC_MASK_BAD_ACCESS      Mask = 1 << EXC_BAD_ACCESS
	EXC_MASK_BAD_INSTRUCTION Mask = 1 << EXC_BAD_INSTRUCTION
	EXC_MASK_ARITHMETIC      Mask = 1 << EXC_ARITHMETIC
	EXC_MASK_BREAKPOINT      Mask = 1 << EXC_BREAKPOINT

	EXC_MASK_ALL = EXC_MASK_BAD_ACCESS | EXC_MASK_BAD_INSTRUCTION | EXC_MASK_ARITHMETIC | EXC_MASK_BREAKPOINT
)

func (m Mask) Has(k Kind) bool {
	return k > 0 && k < kindMax && m&k.Mask() != 0
}

// Kinds yields every kind selected by the mask in ascending order.
func (m Mask) Kinds(yield func(Kind) bool) {
	for k := EXC_BAD_ACCESS; k < kindMax; k++ {
		if m.Has(k) && !yield(k) {
			return
		}
	}
}
