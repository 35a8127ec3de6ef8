package ppc

import (
	"errors"
	"fmt"
	"math/bits"
)

var ErrNotMemoryInstruction = errors.New("not a load/store instruction")

// Access is a decoded integer load or store.
type Access struct {
	Size     int
	Store    bool
	Update   bool
	Reversed bool
	Signed   bool
	Indexed  bool
	Reg      int
	Base     int
	Index    int
	Disp     int32
}

type form struct {
	size                            int
	store, update, reversed, signed bool
}

var dForms = map[uint32]form{
	32: {size: 4},
	33: {size: 4, update: true},
	34: {size: 1},
	35: {size: 1, update: true},
	36: {size: 4, store: true},
	37: {size: 4, store: true, update: true},
	38: {size: 1, store: true},
	39: {size: 1, store: true, update: true},
	40: {size: 2},
	41: {size: 2, update: true},
	42: {size: 2, signed: true},
	43: {size: 2, signed: true, update: true},
	44: {size: 2, store: true},
	45: {size: 2, store: true, update: true},
}

var xForms = map[uint32]form{
	23:  {size: 4},
	55:  {size: 4, update: true},
	87:  {size: 1},
	119: {size: 1, update: true},
	151: {size: 4, store: true},
	183: {size: 4, store: true, update: true},
	215: {size: 1, store: true},
	247: {size: 1, store: true, update: true},
	279: {size: 2},
	311: {size: 2, update: true},
	343: {size: 2, signed: true},
	375: {size: 2, signed: true, update: true},
	407: {size: 2, store: true},
	439: {size: 2, store: true, update: true},
	534: {size: 4, reversed: true},
	662: {size: 4, store: true, reversed: true},
	790: {size: 2, reversed: true},
	918: {size: 2, store: true, reversed: true},
}

// Decode classifies a host instruction word.
func Decode(instr uint32) (Access, error) {
	op := instr >> 26
	a := Access{
		Reg:  int(instr>>21) & 0x1f,
		Base: int(instr>>16) & 0x1f,
	}
	var f form
	var ok bool
	if op == 31 {
		f, ok = xForms[(instr>>1)&0x3ff]
		a.Indexed = true
		a.Index = int(instr>>11) & 0x1f
	} else {
		f, ok = dForms[op]
		a.Disp = int32(int16(instr))
	}
	if !ok {
		return Access{}, fmt.Errorf("%w: %08X", ErrNotMemoryInstruction, instr)
	}
	a.Size, a.Store, a.Update, a.Reversed, a.Signed = f.size, f.store, f.update, f.reversed, f.signed
	return a, nil
}

// EffectiveAddress computes (rA|0) + d or (rA|0) + rB.
func (a Access) EffectiveAddress(s *ThreadState) uint32 {
	var ea uint32
	if a.Base != 0 {
		ea = s.R[a.Base]
	}
	if a.Indexed {
		return ea + s.R[a.Index]
	}
	return ea + uint32(a.Disp)
}

// ToGuest turns the stored register into the little-endian value the guest
// sees at the effective address.
func (a Access) ToGuest(reg uint32) uint32 {
	switch {
	case a.Size == 1:
		return reg & 0xff
	case a.Reversed:
		return reg & sizeMask(a.Size)
	case a.Size == 2:
		return uint32(bits.ReverseBytes16(uint16(reg)))
	}
	return bits.ReverseBytes32(reg)
}

// FromGuest turns a little-endian guest value into the register value the
// load leaves behind.
func (a Access) FromGuest(v uint32) uint32 {
	v &= sizeMask(a.Size)
	if !a.Reversed {
		switch a.Size {
		case 2:
			v = uint32(bits.ReverseBytes16(uint16(v)))
		case 4:
			v = bits.ReverseBytes32(v)
		}
	}
	if a.Signed && a.Size == 2 {
		v = uint32(int32(int16(v)))
	}
	return v
}

func sizeMask(size int) uint32 {
	if size >= 4 {
		return 0xffffffff
	}
	return 1<<(8*size) - 1
}
