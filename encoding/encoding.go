// Package encoding moves fixed-layout values to and from a Stream.
//
// Values are laid out field by field in declaration order, every field aligned
// to its natural alignment capped at the stream block size. Fields tagged
// `encoding:"ignore"` are skipped. Only booleans, sized integers, floats,
// arrays and structs of those are supported.
package encoding

import (
	"errors"
	"reflect"
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

var (
	ErrArgumentInvalid = errors.New("argument must be a non-nil pointer")
	ErrTypeUnsupported = errors.New("type unsupported")
)

type handler = func(Stream, unsafe.Pointer) error

type handlerData struct {
	handler handler
	size    int
}

type codec struct {
	encode, decode handlerData
}

var process sync.Map

// Size returns the number of bytes val occupies in a stream of block size bs.
func Size(bs int, val any) (int, error) {
	c, _, err := lookup(bs, val)
	if err != nil {
		return 0, err
	}
	return c.encode.size, nil
}

func Encode(stream Stream, val any) error {
	c, ptr, err := lookup(stream.BlockSize(), val)
	if err != nil {
		return err
	}
	return c.encode.handler(stream, ptr)
}

func Decode(stream Stream, val any) error {
	c, ptr, err := lookup(stream.BlockSize(), val)
	if err != nil {
		return err
	}
	return c.decode.handler(stream, ptr)
}

func lookup(bs int, val any) (*codec, unsafe.Pointer, error) {
	if val == nil {
		return nil, nil, ErrArgumentInvalid
	}
	typ := reflect2.TypeOf(val)
	if typ.Kind() != reflect.Pointer {
		return nil, nil, ErrArgumentInvalid
	}
	ptr := reflect2.PtrOf(val)
	if ptr == nil {
		return nil, nil, ErrArgumentInvalid
	}
	elem := typ.(reflect2.PtrType).Elem()
	key := [2]uintptr{uintptr(bs), elem.RType()}
	if v, ok := process.Load(key); ok {
		return v.(*codec), ptr, nil
	}
	c, err := build(elem, bs)
	if err != nil {
		return nil, nil, err
	}
	v, _ := process.LoadOrStore(key, c)
	return v.(*codec), ptr, nil
}

func build(typ reflect2.Type, bs int) (c *codec, err error) {
	defer func() {
		if ex := recover(); ex != nil {
			if e, ok := ex.(error); ok && errors.Is(e, ErrTypeUnsupported) {
				c, err = nil, e
				return
			}
			panic(ex)
		}
	}()
	enc, size := encode(typ, bs)
	dec, _ := decode(typ, bs)
	return &codec{
		encode: handlerData{enc, size.Size()},
		decode: handlerData{dec, size.Size()},
	}, nil
}
