package opt4048

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/mklimuk/lumen"
	"github.com/mklimuk/lumen/snsctx"
)

// maxPayload is the largest register write: one 32-bit register.
const maxPayload = 4

// registerIO frames register transactions for one device on the bus.
type registerIO struct {
	transport lumen.I2CBus
	addr      byte
}

// writeRegister sends [reg, payload...] in a single bus write.
func (r *registerIO) writeRegister(ctx context.Context, reg byte, payload []byte) error {
	var buf [1 + maxPayload]byte
	if 1+len(payload) > len(buf) {
		return ErrBufferOverflow
	}
	buf[0] = reg
	n := 1 + copy(buf[1:], payload)
	if snsctx.IsVerbose(ctx) {
		snsctx.Logger(ctx).Debug("opt4048 register write", "addr", fmt.Sprintf("%#x", r.addr), "frame", hex.EncodeToString(buf[:n]))
	}
	err := r.transport.WriteToAddr(ctx, r.addr, buf[:n])
	if err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// readRegister writes the register pointer and reads len(buf) bytes back in
// one combined transaction. The most significant byte arrives first.
func (r *registerIO) readRegister(ctx context.Context, reg byte, buf []byte) error {
	ptr := [1]byte{reg}
	err := r.transport.WriteReadFromAddr(ctx, r.addr, ptr[:], buf)
	if err != nil {
		return &TransportError{Op: "read", Register: reg, Err: err}
	}
	if snsctx.IsVerbose(ctx) {
		snsctx.Logger(ctx).Debug("opt4048 register read", "addr", fmt.Sprintf("%#x", r.addr), "reg", fmt.Sprintf("0x%02x", reg), "data", hex.EncodeToString(buf))
	}
	return nil
}

func (r *registerIO) read16(ctx context.Context, reg byte) (uint16, error) {
	var buf [2]byte
	if err := r.readRegister(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (r *registerIO) read32(ctx context.Context, reg byte) (uint32, error) {
	var buf [4]byte
	if err := r.readRegister(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (r *registerIO) write16(ctx context.Context, reg byte, value uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], value)
	return r.writeRegister(ctx, reg, buf[:])
}
