package encoding

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
)

var padNull [8]byte

func encode(typ reflect2.Type, bs int) (handler, structSize) {
	switch kind := typ.Kind(); {
	case isPlain(kind):
		size := int(typ.Type1().Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}
	case kind == reflect.Array:
		return encodeArray(typ.(reflect2.ArrayType), bs)
	case kind == reflect.Struct:
		return encodeStruct(typ.(reflect2.StructType), bs)
	}
	panic(fmt.Errorf("%w: %s", ErrTypeUnsupported, typ.String()))
}

func encodeArray(typ reflect2.ArrayType, bs int) (handler, structSize) {
	elem := typ.Elem()
	count := typ.Len()
	if isPlain(elem.Kind()) {
		size := int(typ.Type1().Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}
	}
	marshal, elemSize := encode(elem, bs)
	stride := elem.Type1().Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := range count {
			if err := marshal(stream, unsafe.Add(ptr, uintptr(i)*stride)); err != nil {
				return err
			}
		}
		return nil
	}, structSize{elemSize.Size() * count}
}

func encodeStruct(typ reflect2.StructType, bs int) (handler, structSize) {
	fields, size := layoutStruct(typ, bs, encode)
	return func(stream Stream, ptr unsafe.Pointer) error {
		for _, f := range fields {
			if f.pad > 0 {
				if _, err := stream.Write(padNull[:f.pad]); err != nil {
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

type structField struct {
	handler handler
	offset  uintptr
	pad     int
}

func layoutStruct(typ reflect2.StructType, bs int, marshal func(reflect2.Type, int) (handler, structSize)) ([]structField, structSize) {
	var fields []structField
	var size structSize
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.Tag().Get("encoding") == "ignore" {
			continue
		}
		h, fieldSize := marshal(field.Type(), bs)
		at := align(size.Size(), min(field.Type().Type1().Align(), bs))
		pad := at - size.Size()
		if pad > 0 {
			size = append(size, pad)
		}
		size = size.Add(fieldSize)
		fields = append(fields, structField{handler: h, offset: field.Offset(), pad: pad})
	}
	return fields, size
}
