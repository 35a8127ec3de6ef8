// Package vmem lays the guest window out over host memory.
//
// Two spaces are available. The host space reserves the full window from the
// operating system and maps one RAM backing store several times in a row, so
// mirrors are true aliases and protections are enforced by the MMU. The arena
// space keeps every region in one owned buffer and folds mirrors with masks,
// tracking page protections itself. Both report denied accesses as
// *trap.Fault from Load and Store.
package vmem

import (
	"errors"
	"fmt"
	"io"

	"github.com/wnxd/psxmem/host"
)

var (
	ErrSetup       = errors.New("address space setup failed")
	ErrUnsupported = errors.New("host aliasing unsupported")
	ErrRange       = errors.New("offset out of window")
	ErrSize        = errors.New("access size invalid")
)

type Mirroring int

const (
	MIRROR_AUTO Mirroring = iota
	MIRROR_HOST
	MIRROR_MASK
)

func (m Mirroring) String() string {
	switch m {
	case MIRROR_HOST:
		return "host"
	case MIRROR_MASK:
		return "mask"
	}
	return "auto"
}

type Space interface {
	io.Closer
	Mirroring() Mirroring
	PageSize() uint64
	// Bytes is the storage view table entries index into.
	Bytes() []byte
	// Canon maps a window offset to its index in Bytes.
	Canon(off uint32) (int, bool)
	Protect(off, size uint32, prot host.MemProt) error
	Regions() []host.MemRegion
	// Load and Store move a raw host-order word of 1, 2 or 4 bytes.
	Load(off uint32, size int) (uint32, error)
	Store(off uint32, size int, raw uint32) error
	Addr(off uint32) uint64
	Owns(addr uint64) (uint32, bool)
}

func New(mode Mirroring) (Space, error) {
	switch mode {
	case MIRROR_MASK:
		return NewArena(), nil
	case MIRROR_HOST:
		return newHostSpace()
	}
	if hostAliasing() {
		return newHostSpace()
	}
	return NewArena(), nil
}

func setupError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSetup, step, err)
}

func checkSize(size int) error {
	switch size {
	case 1, 2, 4:
		return nil
	}
	return ErrSize
}
