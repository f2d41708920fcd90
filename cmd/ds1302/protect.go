package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type protectConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
}

func (c *protectConfig) Exec(ctx context.Context, args []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "protect")
	}

	d, closer, err := newDS1302(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	switch {
	case len(args) == 0:
	case args[0] == "on":
		if err := d.SetWriteProtect(true); err != nil {
			return err
		}
	case args[0] == "off":
		if err := d.SetWriteProtect(false); err != nil {
			return err
		}
	default:
		return errors.New("ds1302: protect takes \"on\" or \"off\"")
	}

	wp, err := d.WriteProtected()
	if err != nil {
		return err
	}
	if wp {
		fmt.Fprintln(c.out, "write protected")
	} else {
		fmt.Fprintln(c.out, "writable")
	}
	return nil
}

func newProtectCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := protectConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("ds1302 protect", flag.ExitOnError)
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "protect",
		ShortUsage: "protect [on|off]",
		ShortHelp:  "Shows or changes the chip's write protection.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
