package host

type Arch int

const (
	ARCH_UNKNOWN Arch = iota
	ARCH_PPC
)

func (a Arch) String() string {
	switch a {
	case ARCH_PPC:
		return "ppc"
	}
	return "unknown"
}
