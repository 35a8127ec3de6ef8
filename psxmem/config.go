package psxmem

import (
	"log/slog"

	"github.com/wnxd/psxmem/vmem"
)

// BIOS_HLE as Config.Bios skips loading a BIOS image.
const BIOS_HLE = "HLE"

type Config struct {
	BiosDir string
	Bios    string
	// HLE is set by Reset: true when no BIOS image backs the ROM.
	HLE       bool
	Mirroring vmem.Mirroring
	Logger    *slog.Logger
	// Fatal is called when a trap cannot be resolved without corrupting the
	// faulting thread. Defaults to logging and exiting.
	Fatal func(error)
}

// CPU is the interpreter/recompiler side of the emulator.
type CPU interface {
	Recompiling() bool
	Clear(addr, size uint32)
}

// Registers is the device logic behind the hardware register window.
type Registers interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

type interpreter struct{}

func (interpreter) Recompiling() bool   { return false }
func (interpreter) Clear(uint32, uint32) {}

type openBus struct{}

func (openBus) Read8(uint32) uint8     { return 0 }
func (openBus) Read16(uint32) uint16   { return 0 }
func (openBus) Read32(uint32) uint32   { return 0 }
func (openBus) Write8(uint32, uint8)   {}
func (openBus) Write16(uint32, uint16) {}
func (openBus) Write32(uint32, uint32) {}
