package vmem

// Offsets and sizes inside the guest window. A guest address maps to a window
// offset with addr & WINDOW_MASK.
const (
	WINDOW_SIZE = 0x20000000
	WINDOW_MASK = WINDOW_SIZE - 1

	PAGE_SIZE = 0x1000

	RAM_OFFSET  = 0x00000000
	RAM_SIZE    = 0x00200000
	RAM_MASK    = RAM_SIZE - 1
	RAM_MIRRORS = 4
	RAM_EXTENT  = RAM_SIZE * RAM_MIRRORS

	PAR_OFFSET = 0x1f000000
	PAR_SIZE   = 0x00010000

	HW_OFFSET    = 0x1f800000
	HW_SIZE      = 0x00010000
	SCRATCH_SIZE = 0x00001000

	ROM_OFFSET = 0x1fc00000
	ROM_SIZE   = 0x00080000
)

type Area int

const (
	AREA_NONE Area = iota
	AREA_RAM
	AREA_PAR
	AREA_SCRATCH
	AREA_REGISTERS
	AREA_ROM
)

func (a Area) String() string {
	switch a {
	case AREA_RAM:
		return "RAM"
	case AREA_PAR:
		return "Parallel"
	case AREA_SCRATCH:
		return "Scratchpad"
	case AREA_REGISTERS:
		return "Registers"
	case AREA_ROM:
		return "ROM"
	}
	return "undefined"
}

// AreaOf classifies a window offset.
func AreaOf(off uint32) Area {
	switch {
	case off < RAM_EXTENT:
		return AREA_RAM
	case off-PAR_OFFSET < PAR_SIZE:
		return AREA_PAR
	case off-HW_OFFSET < SCRATCH_SIZE:
		return AREA_SCRATCH
	case off-HW_OFFSET < HW_SIZE:
		return AREA_REGISTERS
	case off-ROM_OFFSET < ROM_SIZE:
		return AREA_ROM
	}
	return AREA_NONE
}
