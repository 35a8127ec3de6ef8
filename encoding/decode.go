package encoding

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
)

func decode(typ reflect2.Type, bs int) (handler, structSize) {
	switch kind := typ.Kind(); {
	case isPlain(kind):
		size := int(typ.Type1().Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Read(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}
	case kind == reflect.Array:
		return decodeArray(typ.(reflect2.ArrayType), bs)
	case kind == reflect.Struct:
		return decodeStruct(typ.(reflect2.StructType), bs)
	}
	panic(fmt.Errorf("%w: %s", ErrTypeUnsupported, typ.String()))
}

func decodeArray(typ reflect2.ArrayType, bs int) (handler, structSize) {
	elem := typ.Elem()
	count := typ.Len()
	if isPlain(elem.Kind()) {
		size := int(typ.Type1().Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Read(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}
	}
	unmarshal, elemSize := decode(elem, bs)
	stride := elem.Type1().Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := range count {
			if err := unmarshal(stream, unsafe.Add(ptr, uintptr(i)*stride)); err != nil {
				return err
			}
		}
		return nil
	}, structSize{elemSize.Size() * count}
}

func decodeStruct(typ reflect2.StructType, bs int) (handler, structSize) {
	fields, size := layoutStruct(typ, bs, decode)
	return func(stream Stream, ptr unsafe.Pointer) error {
		for _, f := range fields {
			if f.pad > 0 {
				if err := stream.Skip(f.pad); err != nil {
					return err
				}
			}
			if err := f.handler(stream, unsafe.Add(ptr, f.offset)); err != nil {
				return err
			}
		}
		return nil
	}, size
}
