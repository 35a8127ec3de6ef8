package psxmem_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wnxd/psxmem/internal/test"
	"github.com/wnxd/psxmem/psxmem"
	"github.com/wnxd/psxmem/vmem"
)

func writeBios(t *testing.T, size int) (string, []byte) {
	t.Helper()
	image := make([]byte, size)
	for i := range image {
		image[i] = byte(i*7 + 1)
	}
	dir := t.TempDir()
	test.ExpectSuccess(t, os.WriteFile(filepath.Join(dir, "scph1001.bin"), image, 0o644))
	return dir, image
}

func TestBios(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		dir, image := writeBios(t, vmem.ROM_SIZE)
		m := newFixture(t, mode, &psxmem.Config{BiosDir: dir, Bios: "scph1001.bin"})
		test.ExpectFailure(t, m.HLE())
		test.ExpectFailure(t, m.cfg.HLE)
		test.ExpectEquality(t, m.Read32(0xbfc00000), binary.LittleEndian.Uint32(image))
		test.ExpectEquality(t, m.Read16(0x9fc00122), binary.LittleEndian.Uint16(image[0x122:]))
		test.ExpectEquality(t, m.Read8(0x1fc7ffff), image[vmem.ROM_SIZE-1])

		m.Write32(0xbfc00000, 0)
		test.ExpectEquality(t, m.Read32(0xbfc00000), binary.LittleEndian.Uint32(image))
		test.ExpectSuccess(t, m.HostStore(0xbfc00000, 4, 0) != nil)
		test.ExpectSuccess(t, string(m.Pointer(0xbfc00000)) == string(image))
		test.ExpectSuccess(t, strings.Contains(m.logs.String(), "BIOS loaded"))
	})
}

func TestShortBios(t *testing.T) {
	dir, image := writeBios(t, 0x100)
	m := newFixture(t, vmem.MIRROR_MASK, &psxmem.Config{BiosDir: dir, Bios: "scph1001.bin"})
	test.ExpectFailure(t, m.HLE())
	test.ExpectEquality(t, m.Read8(0xbfc000ff), image[0xff])
	test.ExpectEquality(t, m.Read8(0xbfc00100), 0)
	test.ExpectSuccess(t, strings.Contains(m.logs.String(), "short BIOS image"))
}

func TestBiosFallback(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, &psxmem.Config{BiosDir: t.TempDir(), Bios: "missing.bin"})
		test.ExpectSuccess(t, m.HLE())
		test.ExpectSuccess(t, m.cfg.HLE)
		test.ExpectEquality(t, m.Read32(0xbfc00000), 0)
		test.ExpectSuccess(t, strings.Contains(m.logs.String(), "enabling HLE"))

		hle := newFixtureAfter(t, m, mode, &psxmem.Config{Bios: psxmem.BIOS_HLE})
		test.ExpectSuccess(t, hle.HLE())
		test.ExpectFailure(t, strings.Contains(hle.logs.String(), "enabling HLE"))
	})
}

// newFixtureAfter shuts prev down first, as only one memory can own the ports.
func newFixtureAfter(t *testing.T, prev *fixture, mode vmem.Mirroring, cfg *psxmem.Config) *fixture {
	t.Helper()
	test.ExpectSuccess(t, prev.Shutdown())
	return newFixture(t, mode, cfg)
}

func TestReset(t *testing.T) {
	modes(t, func(t *testing.T, mode vmem.Mirroring) {
		m := newFixture(t, mode, nil)
		m.Write32(0x10, 1)
		m.Write32(0x1f000000, 2)
		m.Write32(0x1f800000, 3)
		test.ExpectSuccess(t, m.ProtectCode(0x8000))
		m.Write32(psxmem.CACHE_CONTROL, psxmem.CACHE_LOCK)

		m.Reset()
		test.ExpectFailure(t, m.Locked())
		test.ExpectEquality(t, m.Read32(0x10), 0)
		test.ExpectEquality(t, m.Read32(0x1f000000), 0)
		test.ExpectEquality(t, m.Read32(0x1f800000), 0)

		m.Write32(0x8000, 4)
		test.ExpectEquality(t, m.Read32(0x8000), 4)
		test.ExpectEquality(t, len(m.cpu.cleared()), 0)
	})
}
