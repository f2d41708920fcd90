package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/northvolt/go-ds1302/ds1302"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type timeConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	set        string
	json       bool
}

func (c *timeConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "time")
	}

	d, closer, err := newDS1302(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if c.set != "" {
		t, err := parseSetTime(c.set)
		if err != nil {
			return err
		}
		if err := d.SetTime(t); err != nil {
			return err
		}
	}

	ti, err := getTimeInfo(d)
	if err != nil {
		return err
	}

	if c.json {
		return writeJSON(c.out, ti)
	}
	return writeTimeText(c.out, ti)
}

func parseSetTime(s string) (time.Time, error) {
	if s == "now" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ds1302: -set takes \"now\" or an RFC 3339 time: %w", err)
	}
	return t, nil
}

type timeInfo struct {
	Time           string `json:"time"`
	Weekday        string `json:"weekday"`
	Running        bool   `json:"running"`
	WriteProtected bool   `json:"write_protected"`
}

func getTimeInfo(d *ds1302.Dev) (*timeInfo, error) {
	t, err := d.ReadTime()
	if err != nil {
		return nil, err
	}
	running, err := d.Running()
	if err != nil {
		return nil, err
	}
	wp, err := d.WriteProtected()
	if err != nil {
		return nil, err
	}
	return &timeInfo{
		Time:           t.Format(time.RFC3339),
		Weekday:        t.Weekday().String(),
		Running:        running,
		WriteProtected: wp,
	}, nil
}

func writeTimeText(w io.Writer, ti *timeInfo) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", ti.Time, ti.Weekday); err != nil {
		return err
	}
	if !ti.Running {
		fmt.Fprintln(w, "oscillator halted")
	}
	if ti.WriteProtected {
		fmt.Fprintln(w, "write protected")
	}
	return nil
}

func writeJSON(w io.Writer, data any) error {
	j, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(j)
	return err
}

func newTimeCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := timeConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("ds1302 time", flag.ExitOnError)
	fs.StringVar(&cfg.set, "set", "", "set the clock first, to \"now\" or an RFC 3339 time")
	fs.BoolVar(&cfg.json, "json", false, "output in json mode")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "time",
		ShortUsage: "time [-set now]",
		ShortHelp:  "Reads the clock, optionally setting it first.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
