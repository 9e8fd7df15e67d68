package lumen

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// AddressableTransactor performs a combined transaction: out is written, then
// len(in) bytes are read back under a repeated start, with no stop condition
// between the two phases. Register-pointer devices rely on this.
type AddressableTransactor interface {
	WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
	AddressableTransactor
}
