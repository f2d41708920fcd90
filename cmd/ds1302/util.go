package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/northvolt/go-ds1302/ds1302"
	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

func newDS1302(c *rootConfig) (*ds1302.Dev, io.Closer, error) {
	switch c.iface {
	case "gpio":
		return newGPIODS1302(c)
	case "hid":
		return newHIDDS1302(c)
	default:
		return nil, nil, errors.New("ds1302: unknown interface")
	}
}

func newGPIODS1302(c *rootConfig) (*ds1302.Dev, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	clk, err := pinByName(c.clkPin)
	if err != nil {
		return nil, nil, err
	}
	data, err := pinByName(c.ioPin)
	if err != nil {
		return nil, nil, err
	}
	rst, err := pinByName(c.rstPin)
	if err != nil {
		return nil, nil, err
	}

	d, err := ds1302.NewGPIODev(clk, data, rst, newConfig(c))
	if err != nil {
		return nil, nil, err
	}
	return d, d, nil
}

func newHIDDS1302(c *rootConfig) (*ds1302.Dev, io.Closer, error) {
	pins, err := hidPins(c)
	if err != nil {
		return nil, nil, err
	}

	d, hid, err := ds1302.NewHIDDev(pins, newConfig(c))
	if err != nil {
		return nil, nil, err
	}
	return d, closeAll{d, hid}, nil
}

func newConfig(c *rootConfig) ds1302.Config {
	cfg := ds1302.ConfigDefault()
	cfg.Debug = newLogger(c.verbose)
	if c.delay > 0 {
		cfg.ClockDelay = c.delay
	}
	return cfg
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("ds1302: no pin named %q", name)
	}
	return p, nil
}

func hidPins(c *rootConfig) (ds1302.MCP2221Pins, error) {
	var pins ds1302.MCP2221Pins
	for _, f := range []struct {
		name  string
		value string
		gp    *uint8
	}{
		{"-clk", c.clkPin, &pins.CLK},
		{"-data", c.ioPin, &pins.IO},
		{"-rst", c.rstPin, &pins.RST},
	} {
		n, err := strconv.ParseUint(f.value, 10, 8)
		if err != nil {
			return pins, fmt.Errorf("ds1302: %s must be a GP number with -i hid: %q", f.name, f.value)
		}
		*f.gp = uint8(n)
	}
	return pins, nil
}

// closeAll closes in order, keeping the first error.
type closeAll []io.Closer

func (cs closeAll) Close() error {
	var firstErr error
	for _, c := range cs {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newLogger(verbose bool) ds1302.Logger {
	if verbose {
		return log.New(os.Stderr, "", 0)
	}
	return nil
}

func prettyHex(data []byte) string {
	return prettyHexIndent(data, "    ", "")
}

func prettyHexIndent(data []byte, prefix string, space string) string {
	var buf strings.Builder

	// prefix and space every 16 byte, and 2 hex, and one space/newline
	cols := 16
	size := (len(data)/cols+1)*(len(prefix)+len(space)+1) + len(data)*3
	buf.Grow(size)

	for i := range data {
		if i > 0 {
			switch i % cols {
			case 0:
				buf.WriteByte('\n')
			case cols / 2:
				buf.WriteByte(' ')
				buf.WriteString(space)
			default:
				buf.WriteByte(' ')
			}
		}
		if i%cols == 0 {
			buf.WriteString(prefix)
		}

		buf.WriteString(fmt.Sprintf("%02X", data[i:i+1]))
	}

	return buf.String()
}

func addLongHelp(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}

	cmd.LongHelp += ds1302LongHelp

	return cmd
}
