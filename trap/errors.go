package trap

import (
	"errors"
	"fmt"
)

var (
	ErrListenerActive     = errors.New("trap listener already active")
	ErrUnhandledException = errors.New("unhandled exception")
)

type Exception interface {
	error
	Trap() *Trap
}

type exception struct {
	trap *Trap
}

type UnhandledException struct {
	exception
}

type PanicException struct {
	exception
	v any
}

func (e *exception) String() string {
	op := "read"
	if e.trap.Write {
		op = "write"
	}
	return fmt.Sprintf("addr: %016X, op: %s", e.trap.Addr, op)
}

func (e *exception) Trap() *Trap {
	return e.trap
}

func (e *UnhandledException) Error() string {
	return fmt.Sprintf("[%v] %s", e.trap.Kind, &e.exception)
}

func (e *UnhandledException) Unwrap() error {
	return ErrUnhandledException
}

func (e *PanicException) Error() string {
	return fmt.Sprintf("[Panic] %s, panic: %v", &e.exception, e.v)
}

func (e *PanicException) Panic() any {
	return e.v
}

func NewUnhandledException(t *Trap) Exception {
	return &UnhandledException{exception{trap: t}}
}

func NewPanicException(t *Trap, v any) Exception {
	return &PanicException{exception: exception{trap: t}, v: v}
}
