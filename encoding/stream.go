package encoding

import (
	"io"
	"unsafe"
)

type Stream interface {
	BlockSize() int
	Offset() uint64
	Skip(int) error
	Read([]byte) (int, error)
	Write([]byte) (int, error)
}

// WordStream reads and writes an array of host-order 32-bit words, the shape
// thread state flavors are exchanged in.
type WordStream struct {
	words []uint32
	off   int
}

func NewWordStream(words []uint32) *WordStream {
	return &WordStream{words: words}
}

func (s *WordStream) raw() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s.words))), len(s.words)*4)
}

func (s *WordStream) BlockSize() int {
	return 4
}

func (s *WordStream) Offset() uint64 {
	return uint64(s.off)
}

// Words returns the words written or read so far, rounded up to a whole word.
func (s *WordStream) Words() []uint32 {
	return s.words[:(s.off+3)/4]
}

func (s *WordStream) Skip(n int) error {
	if s.off+n > len(s.words)*4 {
		return io.ErrUnexpectedEOF
	}
	s.off += n
	return nil
}

func (s *WordStream) Read(b []byte) (int, error) {
	n := copy(b, s.raw()[s.off:])
	s.off += n
	if n < len(b) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (s *WordStream) Write(b []byte) (int, error) {
	n := copy(s.raw()[s.off:], b)
	s.off += n
	if n < len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}
