package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/northvolt/go-ds1302/ds1302"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type ramConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	write      string
	json       bool
}

func (c *ramConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "ram")
	}

	d, closer, err := newDS1302(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if c.write != "" {
		b, err := hex.DecodeString(c.write)
		if err != nil {
			return fmt.Errorf("ds1302: -write takes hex digits: %w", err)
		}
		// The driver would truncate silently; the tool is explicit.
		if len(b) > ds1302.RAMSize {
			return fmt.Errorf("ds1302: %d bytes exceed the %d byte RAM", len(b), ds1302.RAMSize)
		}
		if err := d.WriteRAM(b); err != nil {
			return err
		}
	}

	ram, err := d.ReadRAM()
	if err != nil {
		return err
	}

	if c.json {
		return writeJSON(c.out, ram)
	}
	_, err = fmt.Fprintln(c.out, prettyHex(ram))
	return err
}

func newRAMCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := ramConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("ds1302 ram", flag.ExitOnError)
	fs.StringVar(&cfg.write, "write", "", "hex bytes to store from cell 0 before dumping")
	fs.BoolVar(&cfg.json, "json", false, "output in json mode")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "ram",
		ShortUsage: "ram [-write 48656c6c6f]",
		ShortHelp:  "Dumps the chip's battery-backed RAM, optionally writing it first.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
