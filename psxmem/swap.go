package psxmem

import (
	"math/bits"

	"github.com/wnxd/psxmem/host"
)

// Guest memory is little-endian. Storage holds guest bytes, so on a
// big-endian host every multi-byte value is reversed on the way in and out.
var swapped = host.NativeOrder() == host.BO_BIG_ENDIAN

func fromGuest16(raw uint16) uint16 {
	if swapped {
		return bits.ReverseBytes16(raw)
	}
	return raw
}

func fromGuest32(raw uint32) uint32 {
	if swapped {
		return bits.ReverseBytes32(raw)
	}
	return raw
}

func toGuest16(v uint16) uint16 {
	return fromGuest16(v)
}

func toGuest32(v uint32) uint32 {
	return fromGuest32(v)
}

func fromGuest(raw uint32, size int) uint32 {
	switch size {
	case 2:
		return uint32(fromGuest16(uint16(raw)))
	case 4:
		return fromGuest32(raw)
	}
	return raw & 0xff
}

func toGuest(v uint32, size int) uint32 {
	return fromGuest(v, size)
}
