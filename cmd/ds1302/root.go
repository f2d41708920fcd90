package main

import (
	"context"
	"flag"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type rootConfig struct {
	verbose bool
	iface   string
	clkPin  string
	ioPin   string
	rstPin  string
	delay   time.Duration
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.iface, "i", "gpio", "interface type, gpio or hid")
	fs.StringVar(&c.clkPin, "clk", "GPIO4", "clock pin name, or GP number with -i hid")
	fs.StringVar(&c.ioPin, "data", "GPIO17", "data pin name, or GP number with -i hid")
	fs.StringVar(&c.rstPin, "rst", "GPIO27", "chip enable pin name, or GP number with -i hid")
	fs.DurationVar(&c.delay, "delay", 0, "clock settle delay, 5µs when unset")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("ds1302", flag.ExitOnError)
	cfg.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "ds1302",
		ShortUsage: "ds1302 [flags] <subcommand>",
		ShortHelp:  "Utilities to read and program a DS1302 real-time clock.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}), &cfg
}

var ds1302LongHelp = `

GENERAL
Pin flags name host GPIO pins as known to the GPIO registry, for example
GPIO4 or P1_7 on a Raspberry Pi. With -i hid the chip is expected behind
an MCP2221A USB bridge and the pin flags take GP pin numbers (0-3):

  ds1302 -i hid -clk 0 -data 1 -rst 2 time`
