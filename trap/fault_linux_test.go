package trap_test

import (
	"errors"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wnxd/psxmem/internal/test"
	"github.com/wnxd/psxmem/trap"
)

func TestCatchFault(t *testing.T) {
	b, err := unix.Mmap(-1, 0, 4096, unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		t.Skipf("mmap: %v", err)
	}
	defer unix.Munmap(b)
	p := (*uint32)(unsafe.Pointer(&b[8]))

	err = trap.Catch(false, func() {
		_ = *p
	})
	test.ExpectSuccess(t, err)

	err = trap.Catch(true, func() {
		*p = 1
	})
	var fault *trap.Fault
	if test.ExpectSuccess(t, errors.As(err, &fault)) {
		test.ExpectEquality(t, fault.Write, true)
		test.ExpectEquality(t, fault.Addr, uint64(uintptr(unsafe.Pointer(p))))
	}
}
