package ds1302

import (
	"errors"
	"testing"
)

// fakeMCP models the GPIO module of an MCP2221A behind its HID report
// protocol: one queued response per command written.
type fakeMCP struct {
	vals  [mcpGPPinCount]byte
	dirs  [mcpGPPinCount]byte
	modes [mcpGPPinCount]byte
	rsp   [][]byte
}

func (f *fakeMCP) Write(p []byte) (int, error) {
	rsp := make([]byte, mcpMsgSize)
	rsp[0] = p[0]
	switch p[0] {
	case mcpCmdSRAMGet:
		for i := 0; i < mcpGPPinCount; i++ {
			rsp[mcpSRAMGPOffset+i] = f.vals[i]<<4 | f.dirs[i]<<3 | f.modes[i]
		}
	case mcpCmdSRAMSet:
		if p[mcpSRAMGPAlter] == mcpAlter {
			for i := 0; i < mcpGPPinCount; i++ {
				s := p[mcpSRAMGPAlter+1+i]
				f.vals[i], f.dirs[i], f.modes[i] = s>>4&1, s>>3&1, s&7
			}
		}
	case mcpCmdGPIOSet:
		for i := 0; i < mcpGPPinCount; i++ {
			base := 2 + 4*i
			if p[base] == mcpAlter {
				f.vals[i] = p[base+1] & 1
			}
			if p[base+2] == mcpAlter {
				f.dirs[i] = p[base+3] & 1
			}
		}
	case mcpCmdGPIOGet:
		for i := 0; i < mcpGPPinCount; i++ {
			v := f.vals[i]
			if f.modes[i] != mcpModeGPIO {
				v = 0xee
			}
			rsp[2+2*i] = v
			rsp[3+2*i] = f.dirs[i]
		}
	default:
		rsp[1] = 0x01
	}
	f.rsp = append(f.rsp, rsp)
	return len(p), nil
}

func (f *fakeMCP) Read(p []byte) (int, error) {
	if len(f.rsp) == 0 {
		return 0, errors.New("no response queued")
	}
	n := copy(p, f.rsp[0])
	f.rsp = f.rsp[1:]
	return n, nil
}

func (f *fakeMCP) Close() error { return nil }

var testMCPPins = MCP2221Pins{CLK: 0, IO: 1, RST: 2}

func TestMCP2221BusRejectsBadPins(t *testing.T) {
	testCases := []struct {
		name string
		pins MCP2221Pins
	}{
		{"out of range", MCP2221Pins{CLK: 0, IO: 1, RST: 4}},
		{"duplicate", MCP2221Pins{CLK: 1, IO: 1, RST: 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMCP2221Bus(&fakeMCP{}, tc.pins); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestMCP2221BusDesignatesGPIO(t *testing.T) {
	hid := &fakeMCP{modes: [mcpGPPinCount]byte{2, 2, 2, 2}}
	if _, err := NewMCP2221Bus(hid, testMCPPins); err != nil {
		t.Fatal(err)
	}

	for gp := 0; gp < 3; gp++ {
		if hid.modes[gp] != mcpModeGPIO {
			t.Errorf("GP%d mode 0x%02x, want GPIO", gp, hid.modes[gp])
		}
	}
	// An unrelated pin keeps its designation.
	if hid.modes[3] != 2 {
		t.Errorf("GP3 mode 0x%02x, want 0x02", hid.modes[3])
	}
}

func TestMCP2221BusSetGet(t *testing.T) {
	hid := &fakeMCP{}
	bus, err := NewMCP2221Bus(hid, testMCPPins)
	if err != nil {
		t.Fatal(err)
	}

	if err := bus.SetupOutput(Low, PinCLK, PinRST, PinIO); err != nil {
		t.Fatal(err)
	}
	if err := bus.Set(PinIO, High); err != nil {
		t.Fatal(err)
	}
	l, err := bus.Get(PinIO)
	if err != nil {
		t.Fatal(err)
	}
	if l != High {
		t.Errorf("got %v, want %v", l, High)
	}

	if err := bus.SetupInput(PinIO); err != nil {
		t.Fatal(err)
	}
	if hid.dirs[testMCPPins.IO] != mcpDirInput {
		t.Errorf("IO direction 0x%02x, want input", hid.dirs[testMCPPins.IO])
	}
	// Switching direction must not have disturbed the driven value.
	if hid.vals[testMCPPins.IO] != 1 {
		t.Errorf("IO value %d, want 1", hid.vals[testMCPPins.IO])
	}

	if err := bus.Release(PinCLK, PinIO, PinRST); err != nil {
		t.Fatal(err)
	}
	for _, gp := range []uint8{0, 1, 2} {
		if hid.dirs[gp] != mcpDirInput {
			t.Errorf("GP%d still an output after release", gp)
		}
	}
}
