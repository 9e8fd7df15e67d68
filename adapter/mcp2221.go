package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mklimuk/lumen"
	"github.com/mklimuk/lumen/snsctx"
)

var _ lumen.I2CBus = &MCP2221{}

var ErrCommandUnsupported = errors.New("unsupported command")
var ErrCommandFailed = errors.New("command failed")

// MCP2221 command codes.
const (
	cmdStatusSetParameters byte = 0x10
	cmdReadI2CData         byte = 0x40
	cmdReadGPIO            byte = 0x51
	cmdWriteData           byte = 0x90
	cmdReadData            byte = 0x91
	cmdReadDataRepeated    byte = 0x93
	cmdWriteDataNoStop     byte = 0x94
)

const (
	// maxTransfer is the largest payload one report carries.
	maxTransfer = 60
	// readErrorSize flags a failed engine read in the data length byte.
	readErrorSize = 127
	// clockHz is the MCP2221 reference clock used for the speed divider.
	clockHz = 12_000_000
)

type MCP2221 struct {
	mx           sync.Mutex
	open         Opener
	request      []byte
	response     []byte
	responseWait time.Duration
}

type Option func(*MCP2221)

// WithDeviceIndex selects one adapter when several are attached.
func WithDeviceIndex(index int) Option {
	return func(d *MCP2221) {
		d.open = hidOpener(index)
	}
}

// WithResponseWait sets the delay between a request and reading its response.
func WithResponseWait(wait time.Duration) Option {
	return func(d *MCP2221) {
		d.responseWait = wait
	}
}

// WithOpener replaces the HID lookup, e.g. with an already opened device.
func WithOpener(open Opener) Option {
	return func(d *MCP2221) {
		d.open = open
	}
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"speed_divider"`
	I2CTimeout             int    `yaml:"timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent"`
	ReadPending            int    `yaml:"read_pending"`
}

func NewMCP2221(opts ...Option) *MCP2221 {
	d := &MCP2221{
		open:         hidOpener(-1),
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.write(ctx, cmdWriteData, address, buffer); err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	return nil
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.read(ctx, cmdReadData, address, buffer); err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	return nil
}

// WriteReadFromAddr writes out without a stop condition and reads in back
// after a repeated start.
func (d *MCP2221) WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.write(ctx, cmdWriteDataNoStop, address, out); err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	if err := d.read(ctx, cmdReadDataRepeated, address, in); err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	return nil
}

func (d *MCP2221) write(ctx context.Context, cmd byte, address byte, buffer []byte) error {
	if len(buffer) > maxTransfer {
		return fmt.Errorf("payload of %d bytes exceeds %d", len(buffer), maxTransfer)
	}
	d.resetBuffers()
	d.request[0] = cmd
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	if err := d.send(ctx); err != nil {
		return err
	}
	if d.response[1] != 0x00 {
		snsctx.Logger(ctx).Debug("adapter busy", "cmd", fmt.Sprintf("%#x", cmd))
		return lumen.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) read(ctx context.Context, cmd byte, address byte, buffer []byte) error {
	if len(buffer) > maxTransfer {
		return fmt.Errorf("read of %d bytes exceeds %d", len(buffer), maxTransfer)
	}
	d.resetBuffers()
	d.request[0] = cmd
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 | 1
	if err := d.send(ctx); err != nil {
		return err
	}
	if d.response[1] != 0x00 {
		return lumen.ErrBusBusy
	}
	d.resetBuffers()
	d.request[0] = cmdReadI2CData
	if err := d.send(ctx); err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == readErrorSize || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:4+len(buffer)])
	return nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParameters
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

// SetSpeed programs the I2C clock. The adapter refuses while a transfer is
// in progress.
func (d *MCP2221) SetSpeed(ctx context.Context, hz int) error {
	if hz < 50_000 || hz > 400_000 {
		return fmt.Errorf("unsupported i2c speed %d Hz", hz)
	}
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParameters
	d.request[3] = 0x20
	d.request[4] = byte(clockHz/hz - 3)
	if err := d.send(ctx); err != nil {
		return fmt.Errorf("set speed request failed: %w", err)
	}
	if d.response[3] != 0x20 {
		return ErrCommandFailed
	}
	return nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		9: Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11:	Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12:	Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13:	Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16:	Lower byte (16-bit value) of the I2C address being used
		17:	Higher byte (16-bit value) of the I2C address being used
	*/
	status := &MCP2221Status{
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

func (d *MCP2221) Release(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	_, err := d.releaseBus(ctx)
	return err
}

// ReleaseBus cancels the current transfer and frees the bus.
func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.releaseBus(ctx)
}

func (d *MCP2221) releaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatusSetParameters
	d.request[2] = 0x10
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func (d *MCP2221) send(ctx context.Context) error {
	dev, err := d.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = dev.Close()
	}()
	logger := snsctx.Logger(ctx)
	verbose := snsctx.IsVerbose(ctx)
	if verbose {
		logger.Debug("sending message to adapter", "report", hex.EncodeToString(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.responseWait):
	}
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	if d.response[0] != d.request[0] {
		return fmt.Errorf("response to command %#x echoes %#x", d.request[0], d.response[0])
	}
	if verbose {
		logger.Debug("read message from adapter", "report", hex.EncodeToString(d.response))
	}
	return nil
}

func (d *MCP2221) resetBuffers() {
	clear(d.request)
	clear(d.response)
}
