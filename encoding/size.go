package encoding

import "reflect"

type structSize []int

func (ss structSize) Add(size structSize) structSize {
	return append(ss, size...)
}

func (ss structSize) Size() (total int) {
	for _, size := range ss {
		total += size
	}
	return
}

func align(a, b int) int {
	if b <= 1 {
		return a
	}
	return (a + b - 1) / b * b
}

func isPlain(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
