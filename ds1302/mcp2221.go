package ds1302

import (
	"errors"
	"fmt"
	"io"

	"github.com/karalabe/usb"
)

// ErrUSBNotSupported is returned when USB support is missing.
//
// When building, CGO is required for USB support. If CGO is not enabled,
// the HID interface will not be available.
var ErrUSBNotSupported = errors.New("ds1302: usb support is missing")

// MCP2221A USB identifiers.
const (
	mcpVendorID  = 0x04d8
	mcpProductID = 0x00dd
)

// MCP2221A HID report layout. All commands and responses are 64 bytes,
// with the command code echoed back as the first response byte.
const (
	mcpMsgSize = 64

	mcpCmdGPIOSet = 0x50
	mcpCmdGPIOGet = 0x51
	mcpCmdSRAMSet = 0x60
	mcpCmdSRAMGet = 0x61

	// mcpAlter marks a field of a GPIO set command as "apply this value".
	mcpAlter = 0xff

	mcpDirOutput = 0x00
	mcpDirInput  = 0x01

	// mcpModeGPIO designates a GP pin for plain GPIO operation.
	mcpModeGPIO = 0x00

	// mcpSRAMGPOffset is where the four GP settings bytes sit in a SRAM
	// get response; mcpSRAMGPAlter flags a SRAM set command as carrying
	// new GP settings.
	mcpSRAMGPOffset = 22
	mcpSRAMGPAlter  = 7

	mcpGPPinCount = 4
)

// MCP2221Pins maps the chip lines to GP pin numbers (0-3) of the bridge.
type MCP2221Pins struct {
	CLK uint8
	IO  uint8
	RST uint8
}

// mcp2221Bus drives the chip through the GP pins of an MCP2221A USB-to-GPIO
// bridge, using HID report commands for every pin operation.
type mcp2221Bus struct {
	dev usb.Device
	gp  [3]byte
}

// NewMCP2221Bus returns a PinBus backed by an opened MCP2221A HID device.
//
// The three GP pins are redesignated as GPIO in the bridge's SRAM settings;
// other pins keep their current designation.
func NewMCP2221Bus(dev usb.Device, pins MCP2221Pins) (PinBus, error) {
	if pins.CLK >= mcpGPPinCount || pins.IO >= mcpGPPinCount || pins.RST >= mcpGPPinCount {
		return nil, fmt.Errorf("ds1302: mcp2221 GP pin out of range")
	}
	if pins.CLK == pins.IO || pins.IO == pins.RST || pins.CLK == pins.RST {
		return nil, fmt.Errorf("ds1302: pins must be distinct")
	}
	b := &mcp2221Bus{dev: dev}
	b.gp[PinCLK] = pins.CLK
	b.gp[PinIO] = pins.IO
	b.gp[PinRST] = pins.RST
	return b, b.designateGPIO()
}

// NewHIDDev returns a device reached through an MCP2221A bridge over USB.
//
// The first matching bridge on the bus is used. The returned closer closes
// the USB handle and must be closed after the device.
func NewHIDDev(pins MCP2221Pins, cfg Config) (*Dev, io.Closer, error) {
	if !usb.Supported() {
		return nil, nil, ErrUSBNotSupported
	}

	deviceInfos, err := usb.EnumerateHid(mcpVendorID, mcpProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("ds1302: failed to get hid devices: %w", err)
	}
	for _, di := range deviceInfos {
		hid, e := di.Open()
		if e != nil {
			err = e
			continue
		}

		bus, err := NewMCP2221Bus(hid, pins)
		if err != nil {
			hid.Close()
			return nil, nil, err
		}
		d, err := New(bus, cfg)
		if err != nil {
			hid.Close()
			return nil, nil, err
		}
		return d, hid, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ds1302: %w", err)
	}
	return nil, nil, errors.New("ds1302: no hid devices found")
}

// send transmits one command report and returns the response report.
func (b *mcp2221Bus) send(cmd byte, msg []byte) ([]byte, error) {
	msg[0] = cmd
	if _, err := b.dev.Write(msg); err != nil {
		return nil, fmt.Errorf("ds1302: mcp2221 write: %w", err)
	}

	rsp := make([]byte, mcpMsgSize)
	n, err := b.dev.Read(rsp)
	if err != nil {
		return nil, fmt.Errorf("ds1302: mcp2221 read: %w", err)
	}
	if n < mcpMsgSize {
		return nil, fmt.Errorf("ds1302: mcp2221 short read: %d of %d bytes", n, mcpMsgSize)
	}
	if rsp[0] != cmd || rsp[1] != 0x00 {
		return nil, fmt.Errorf("ds1302: mcp2221 command 0x%02x failed", cmd)
	}
	return rsp, nil
}

// designateGPIO rewrites the bridge's volatile GP settings so the three
// pins operate as plain GPIO. The SRAM set command replaces all four GP
// settings at once, so current settings are read first and carried over
// for unrelated pins.
func (b *mcp2221Bus) designateGPIO() error {
	rsp, err := b.send(mcpCmdSRAMGet, make([]byte, mcpMsgSize))
	if err != nil {
		return err
	}

	msg := make([]byte, mcpMsgSize)
	msg[mcpSRAMGPAlter] = mcpAlter
	copy(msg[mcpSRAMGPAlter+1:], rsp[mcpSRAMGPOffset:mcpSRAMGPOffset+mcpGPPinCount])
	for _, gp := range b.gp {
		msg[mcpSRAMGPAlter+1+int(gp)] = mcpDirOutput<<3 | mcpModeGPIO
	}
	_, err = b.send(mcpCmdSRAMSet, msg)
	return err
}

// setPin issues a GPIO set command altering the value and/or direction of
// one GP pin. A nil field is left untouched.
func (b *mcp2221Bus) setPin(gp byte, value *Level, dir *byte) error {
	msg := make([]byte, mcpMsgSize)
	i := 2 + 4*int(gp)
	if value != nil {
		msg[i+0] = mcpAlter
		if *value {
			msg[i+1] = 1
		}
	}
	if dir != nil {
		msg[i+2] = mcpAlter
		msg[i+3] = *dir
	}
	_, err := b.send(mcpCmdGPIOSet, msg)
	return err
}

func (b *mcp2221Bus) SetupOutput(initial Level, pins ...Pin) error {
	dir := byte(mcpDirOutput)
	for _, p := range pins {
		level := initial
		if err := b.setPin(b.gp[p], &level, &dir); err != nil {
			return err
		}
	}
	return nil
}

func (b *mcp2221Bus) SetupInput(p Pin) error {
	dir := byte(mcpDirInput)
	return b.setPin(b.gp[p], nil, &dir)
}

func (b *mcp2221Bus) Set(p Pin, l Level) error {
	return b.setPin(b.gp[p], &l, nil)
}

func (b *mcp2221Bus) Get(p Pin) (Level, error) {
	rsp, err := b.send(mcpCmdGPIOGet, make([]byte, mcpMsgSize))
	if err != nil {
		return Low, err
	}
	i := 2 + 2*int(b.gp[p])
	if rsp[i] == 0xee {
		return Low, fmt.Errorf("ds1302: mcp2221 GP%d not in GPIO mode", b.gp[p])
	}
	return rsp[i] != 0, nil
}

// Release switches the pins back to inputs, leaving them high impedance.
// The bridge has no true unconfigured state for a GP pin.
func (b *mcp2221Bus) Release(pins ...Pin) error {
	dir := byte(mcpDirInput)
	var firstErr error
	for _, p := range pins {
		if err := b.setPin(b.gp[p], nil, &dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
