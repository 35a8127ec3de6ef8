package trap

import (
	"sync"

	"gopkg.in/tomb.v2"
)

type request struct {
	trap  *Trap
	reply chan<- Result
}

// Port receives traps and serves them on its own goroutine.
type Port struct {
	handler Handler
	recv    chan request
	t       tomb.Tomb
}

type portEntry struct {
	mask Mask
	port *Port
}

// Ports is a saved set of port assignments, one entry per kind.
type Ports []portEntry

var (
	portsMu sync.RWMutex
	ports   [kindMax]*Port
)

func NewPort(handler Handler) *Port {
	p := &Port{handler: handler, recv: make(chan request)}
	p.t.Go(p.loop)
	return p
}

func (p *Port) Close() error {
	p.t.Kill(nil)
	return p.t.Wait()
}

func (p *Port) loop() error {
	for {
		select {
		case <-p.t.Dying():
			return nil
		case req := <-p.recv:
			req.reply <- p.handle(req.trap)
		}
	}
}

func (p *Port) handle(t *Trap) (result Result) {
	defer func() {
		if ex := recover(); ex != nil {
			p.t.Kill(NewPanicException(t, ex))
			result = Result_Next
		}
	}()
	return p.handler(t)
}

func (p *Port) send(t *Trap) Result {
	reply := make(chan Result, 1)
	select {
	case <-p.t.Dying():
		return Result_Next
	case p.recv <- request{trap: t, reply: reply}:
	}
	return <-reply
}

// SetPorts installs port for every kind in mask and returns the previous
// assignment. A nil port removes the assignment.
func SetPorts(mask Mask, port *Port) Ports {
	portsMu.Lock()
	defer portsMu.Unlock()
	var old Ports
	for k := range mask.Kinds {
		old = append(old, portEntry{mask: k.Mask(), port: ports[k]})
		ports[k] = port
	}
	return old
}

// GetPorts returns the current assignment for every kind in mask.
func GetPorts(mask Mask) Ports {
	portsMu.RLock()
	defer portsMu.RUnlock()
	var cur Ports
	for k := range mask.Kinds {
		cur = append(cur, portEntry{mask: k.Mask(), port: ports[k]})
	}
	return cur
}

func (ps Ports) Restore() {
	portsMu.Lock()
	defer portsMu.Unlock()
	for _, e := range ps {
		for k := range e.mask.Kinds {
			ports[k] = e.port
		}
	}
}

// Forward hands t to the saved port for its kind.
func (ps Ports) Forward(t *Trap) Result {
	for _, e := range ps {
		if !e.mask.Has(t.Kind) {
			continue
		} else if e.port == nil {
			break
		}
		return e.port.send(t)
	}
	return Result_Next
}

// Raise delivers t to the port installed for its kind and blocks until the
// port replies.
func Raise(t *Trap) Result {
	if t.Kind <= 0 || t.Kind >= kindMax {
		return Result_Next
	}
	portsMu.RLock()
	p := ports[t.Kind]
	portsMu.RUnlock()
	if p == nil {
		return Result_Next
	}
	return p.send(t)
}
