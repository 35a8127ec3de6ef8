package host

import (
	"strings"
	"unsafe"
)

type ByteOrder int

const (
	BO_LITTLE_ENDIAN ByteOrder = iota
	BO_BIG_ENDIAN
)

// NativeOrder reports the byte order the host stores multi-byte words in.
func NativeOrder() ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return BO_LITTLE_ENDIAN
	}
	return BO_BIG_ENDIAN
}

type MemProt int

const (
	MEM_PROT_NONE MemProt = 0
	MEM_PROT_READ MemProt = 1 << (iota - 1)
	MEM_PROT_WRITE
	MEM_PROT_EXEC

	MEM_PROT_RW = MEM_PROT_READ | MEM_PROT_WRITE
)

func (p MemProt) String() string {
	if p == MEM_PROT_NONE {
		return "---"
	}
	var sb strings.Builder
	for i, c := range "rwx" {
		if p&(1<<i) != 0 {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

type MemRegion struct {
	Addr, Size uint64
	Prot       MemProt
}

func (r MemRegion) Contains(addr uint64) bool {
	return addr >= r.Addr && addr-r.Addr < r.Size
}
