// Package psxmem is the guest memory of the console: translation tables over
// a vmem.Space, typed accessors, the cache-isolation write guard, resolution
// of traps raised by translated code, and BIOS loading.
package psxmem

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/wnxd/psxmem/host"
	"github.com/wnxd/psxmem/ppc"
	"github.com/wnxd/psxmem/trap"
	"github.com/wnxd/psxmem/vmem"
)

var (
	ErrNotInitialized = errors.New("memory not initialized")
	ErrNotRAM         = errors.New("address outside RAM")
)

var _ ppc.Memory = (*Memory)(nil)

type Memory struct {
	cfg  *Config
	cpu  CPU
	regs Registers
	log  *slog.Logger

	space    vmem.Space
	listener atomic.Pointer[trap.Listener]

	mu        sync.RWMutex
	read      *Table
	write     *Table
	locked    atomic.Bool
	code      atomic.Int32
	codePages map[uint32]struct{}
}

func New(cfg *Config, cpu CPU, regs Registers) *Memory {
	if cfg == nil {
		cfg = new(Config)
	}
	if cpu == nil {
		cpu = interpreter{}
	}
	if regs == nil {
		regs = openBus{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		cfg:       cfg,
		cpu:       cpu,
		regs:      regs,
		log:       logger.With("component", "psxmem"),
		codePages: make(map[uint32]struct{}),
	}
}

// Init builds the address space and the translation tables, then takes over
// the bad-access and bad-instruction ports.
func (m *Memory) Init() error {
	if m.space != nil {
		if err := m.Shutdown(); err != nil {
			return err
		}
	}
	space, err := vmem.New(m.cfg.Mirroring)
	if err != nil {
		return fmt.Errorf("init memory: %w", err)
	}
	m.space = space
	m.read, m.write = newTables(space)
	m.locked.Store(false)
	m.code.Store(0)
	clear(m.codePages)
	l, err := trap.Listen(trap.EXC_MASK_BAD_ACCESS|trap.EXC_MASK_BAD_INSTRUCTION, m.handleTrap)
	if err != nil {
		space.Close()
		m.space = nil
		return fmt.Errorf("init memory: %w", err)
	}
	m.listener.Store(l)
	m.log.Info("memory initialized", "mirroring", space.Mirroring().String(), "base", fmt.Sprintf("%016X", space.Addr(0)))
	return nil
}

// Shutdown hands the ports back and releases the address space.
func (m *Memory) Shutdown() error {
	var errs []error
	if l := m.listener.Swap(nil); l != nil {
		errs = append(errs, l.Close())
	}
	if m.space != nil {
		errs = append(errs, m.space.Close())
		m.space = nil
	}
	m.read, m.write = nil, nil
	return errors.Join(errs...)
}

func (m *Memory) Space() vmem.Space {
	return m.space
}

func (m *Memory) Locked() bool {
	return m.locked.Load()
}

func (m *Memory) HLE() bool {
	return m.cfg.HLE
}

// ProtectCode makes the RAM page holding addr read-only in every mirror, so
// the next store into it traps and invalidates the translated code.
func (m *Memory) ProtectCode(addr uint32) error {
	if m.space == nil {
		return ErrNotInitialized
	}
	off := addr & vmem.WINDOW_MASK
	if vmem.AreaOf(off) != vmem.AREA_RAM {
		return fmt.Errorf("%w: %08X", ErrNotRAM, addr)
	}
	page := vmem.PageOf(off & vmem.RAM_MASK)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codePages[page]; ok {
		return nil
	}
	if err := m.protectPage(page, host.MEM_PROT_READ); err != nil {
		return err
	}
	m.codePages[page] = struct{}{}
	m.code.Store(int32(len(m.codePages)))
	return nil
}

func (m *Memory) fatal(err error) {
	if m.cfg.Fatal != nil {
		m.cfg.Fatal(err)
		return
	}
	m.log.Error("unrecoverable trap", "err", err)
	os.Exit(1)
}

func (m *Memory) unmapped(op string, addr uint32) {
	m.log.Debug("unmapped access", "op", op, "addr", fmt.Sprintf("%08X", addr))
}
