package psxmem

import "github.com/wnxd/psxmem/vmem"

const (
	TABLE_SIZE  = 0x10000
	TABLE_SHIFT = 16

	ramPages = vmem.RAM_EXTENT >> TABLE_SHIFT
)

// RAM table index ranges: KUSEG, KSEG0 and KSEG1.
var ramSegments = [...]uint32{0x0000, 0x8000, 0xa000}

// Entry is a translation table slot: the index of a 64 KB chunk in the space
// byte view. The zero Entry is unmapped.
type Entry uint32

const entryValid Entry = 1 << 31

func makeEntry(idx int) Entry {
	return Entry(idx) | entryValid
}

func (e Entry) Valid() bool {
	return e&entryValid != 0
}

func (e Entry) Index() int {
	return int(e &^ entryValid)
}

type Table [TABLE_SIZE]Entry

func newTables(s vmem.Space) (read, write *Table) {
	read = new(Table)
	for i := range uint32(ramPages) {
		idx, _ := s.Canon((i & (vmem.RAM_MASK >> TABLE_SHIFT)) << TABLE_SHIFT)
		for _, seg := range ramSegments {
			read[seg+i] = makeEntry(idx)
		}
	}
	if idx, ok := s.Canon(vmem.PAR_OFFSET); ok {
		read[vmem.PAR_OFFSET>>TABLE_SHIFT] = makeEntry(idx)
	}
	if idx, ok := s.Canon(vmem.HW_OFFSET); ok {
		read[vmem.HW_OFFSET>>TABLE_SHIFT] = makeEntry(idx)
	}
	write = new(Table)
	*write = *read
	return
}

func (t *Table) clearRAM() {
	for _, seg := range ramSegments {
		clear(t[seg : seg+ramPages])
	}
}

func (t *Table) copyRAM(from *Table) {
	for _, seg := range ramSegments {
		copy(t[seg:seg+ramPages], from[seg:seg+ramPages])
	}
}

func isRAMIndex(i uint32) bool {
	for _, seg := range ramSegments {
		if i-seg < ramPages {
			return true
		}
	}
	return false
}
