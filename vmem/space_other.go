//go:build !linux

package vmem

func hostAliasing() bool {
	return false
}

func newHostSpace() (Space, error) {
	return nil, setupError("alias", ErrUnsupported)
}
