package trap

import "sync"

var (
	activeMu sync.Mutex
	active   *Listener
)

// Listener owns the process ports for a mask. At most one listener can be
// active at a time.
type Listener struct {
	mask  Mask
	port  *Port
	saved Ports
}

func Listen(mask Mask, handler Handler) (*Listener, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		return nil, ErrListenerActive
	}
	l := &Listener{mask: mask, port: NewPort(handler)}
	l.saved = SetPorts(mask, l.port)
	active = l
	return l, nil
}

func (l *Listener) Mask() Mask {
	return l.mask
}

// Forward hands t to whatever was installed before the listener.
func (l *Listener) Forward(t *Trap) Result {
	return l.saved.Forward(t)
}

// Close restores the saved ports and stops the serving goroutine.
func (l *Listener) Close() error {
	if l == nil {
		return nil
	}
	activeMu.Lock()
	defer activeMu.Unlock()
	if l.port == nil {
		return nil
	}
	l.saved.Restore()
	err := l.port.Close()
	l.port = nil
	if active == l {
		active = nil
	}
	return err
}
