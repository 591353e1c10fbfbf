package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/peterh/liner"
	"gopkg.in/yaml.v3"

	"github.com/wpwoodjr/mathpad"
	"github.com/wpwoodjr/mathpad/archive"
)

const (
	appName     = "mathpad"
	historyFile = ".mathpad_history"
	configFile  = ".mathpad.yaml"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = "MathPad notation solver\nEnter lines, blank line solves. Ctrl+D exits. Type :quit to exit."

// fileConfig is the optional ~/.mathpad.yaml per-user defaults. Pointer
// fields distinguish "absent" from a zero value.
type fileConfig struct {
	Places          *int   `yaml:"places"`
	StripZeros      *bool  `yaml:"stripzeros"`
	GroupDigits     *bool  `yaml:"groupdigits"`
	Notation        string `yaml:"notation"`
	Degrees         *bool  `yaml:"degrees"`
	ShadowConstants *bool  `yaml:"shadowconstants"`
	Constants       string `yaml:"constants"`
	Functions       string `yaml:"functions"`
}

type options struct {
	cfg       mathpad.Config
	constants string
	functions string
	archive   bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opt := options{cfg: mathpad.DefaultConfig()}
	if err := loadFileConfig(&opt); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}

	opts, optind, err := getopt.Getopts(args, "p:n:c:f:sgdSah")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		usage()
		return 2
	}
	for _, o := range opts {
		switch o.Option {
		case 'p':
			places, err := strconv.Atoi(o.Value)
			if err != nil || places < 0 || places > 14 {
				fmt.Fprintf(os.Stderr, "%s: invalid -p value %q\n", appName, o.Value)
				return 2
			}
			opt.cfg.Places = places
		case 'n':
			n, ok := parseNotation(o.Value)
			if !ok {
				fmt.Fprintf(os.Stderr, "%s: invalid -n value %q (float, sci, eng)\n", appName, o.Value)
				return 2
			}
			opt.cfg.Notation = n
		case 'c':
			opt.constants = o.Value
		case 'f':
			opt.functions = o.Value
		case 's':
			opt.cfg.StripZeros = false
		case 'g':
			opt.cfg.GroupDigits = true
		case 'd':
			opt.cfg.DegreesMode = true
		case 'S':
			opt.cfg.ShadowConstants = false
		case 'a':
			opt.archive = true
		case 'h':
			usage()
			return 0
		}
	}
	args = args[optind:]

	ctx, errs := buildContext(opt)
	for _, e := range errs {
		color.Red("%s: %s", appName, e)
	}

	switch {
	case opt.archive:
		if len(args) != 1 {
			fmt.Fprintf(os.Stderr, "usage: %s -a <archive.txt>\n", appName)
			return 2
		}
		return solveArchive(args[0], ctx, opt.cfg)
	case len(args) == 0:
		return repl(ctx, opt.cfg)
	case len(args) == 1:
		return solveFile(args[0], ctx, opt.cfg)
	default:
		usage()
		return 2
	}
}

func usage() {
	fmt.Printf(`MathPad notation solver

Usage:
  %s [options]               Start the interactive REPL.
  %s [options] <file>        Solve a document, print the result to stdout.
  %s [options] -a <file>     Solve every record of a text archive.

Options:
  -p <places>   Decimal places (0-14, default 2)
  -s            Keep trailing zeros
  -g            Group digits by thousands
  -n <notation> float, sci or eng (default float)
  -d            Trig in degrees
  -S            Declarations may not shadow constants
  -c <file>     Constants definitions
  -f <file>     Function definitions
  -h            This help

Per-user defaults load from ~/%s.
`, appName, appName, appName, configFile)
}

func parseNotation(s string) (mathpad.Notation, bool) {
	switch strings.ToLower(s) {
	case "float", "":
		return mathpad.NotationFloat, true
	case "sci":
		return mathpad.NotationSci, true
	case "eng":
		return mathpad.NotationEng, true
	}
	return mathpad.NotationFloat, false
}

func loadFileConfig(opt *options) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(home, configFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%s: %w", configFile, err)
	}
	if fc.Places != nil {
		opt.cfg.Places = *fc.Places
	}
	if fc.StripZeros != nil {
		opt.cfg.StripZeros = *fc.StripZeros
	}
	if fc.GroupDigits != nil {
		opt.cfg.GroupDigits = *fc.GroupDigits
	}
	if fc.Notation != "" {
		n, ok := parseNotation(fc.Notation)
		if !ok {
			return fmt.Errorf("%s: unknown notation %q", configFile, fc.Notation)
		}
		opt.cfg.Notation = n
	}
	if fc.Degrees != nil {
		opt.cfg.DegreesMode = *fc.Degrees
	}
	if fc.ShadowConstants != nil {
		opt.cfg.ShadowConstants = *fc.ShadowConstants
	}
	opt.constants = fc.Constants
	opt.functions = fc.Functions
	return nil
}

func buildContext(opt options) (*mathpad.Context, []string) {
	constants, err := readOptional(opt.constants)
	if err != nil {
		return &mathpad.Context{}, []string{err.Error()}
	}
	functions, err := readOptional(opt.functions)
	if err != nil {
		return &mathpad.Context{}, []string{err.Error()}
	}
	return mathpad.NewContext(constants, functions, opt.cfg)
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// -----------------------------------------------------------------------------
// file mode
// -----------------------------------------------------------------------------

func solveFile(path string, ctx *mathpad.Context, cfg mathpad.Config) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}
	res := mathpad.Solve(string(src), ctx, cfg)
	fmt.Print(res.Text)
	if !strings.HasSuffix(res.Text, "\n") {
		fmt.Println()
	}
	reportResult(res)
	if len(res.Errors) > 0 {
		return 1
	}
	return 0
}

func reportResult(res mathpad.Result) {
	for _, e := range res.Errors {
		color.Red("%s", e)
	}
	if res.Solved > 0 {
		color.Green("solved %d", res.Solved)
	}
}

// -----------------------------------------------------------------------------
// archive mode
// -----------------------------------------------------------------------------

// solveArchive solves every record of a text archive and writes the updated
// archive to stdout. Each record's own Places/StripZeros settings override
// the config defaults.
func solveArchive(path string, ctx *mathpad.Context, cfg mathpad.Config) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}
	defer f.Close()

	recs, err := archive.Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s: %v\n", appName, path, err)
		return 1
	}

	failed := false
	for i := range recs {
		recCfg := cfg
		recCfg.Places = recs[i].Places
		recCfg.StripZeros = recs[i].StripZeros
		res := mathpad.Solve(recs[i].Text, ctx, recCfg)
		recs[i].Text = res.Text
		for _, e := range res.Errors {
			color.Red("record %d (%s): %s", i+1, recs[i].Category, e)
			failed = true
		}
	}

	if err := archive.Write(os.Stdout, recs); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	if failed {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

// repl reads a document interactively. Lines accumulate; an empty line
// solves the buffer, prints the result, and keeps it for further editing.
func repl(ctx *mathpad.Context, cfg mathpad.Config) int {
	color.Blue("%s", banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	var doc []string
	for {
		prompt := promptMain
		if len(doc) > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			continue
		}

		switch strings.TrimSpace(strings.ToLower(line)) {
		case ":quit":
			return 0
		case ":clear":
			doc = nil
			continue
		case "":
			if len(doc) == 0 {
				continue
			}
			res := mathpad.Solve(strings.Join(doc, "\n"), ctx, cfg)
			fmt.Println(res.Text)
			reportResult(res)
			doc = strings.Split(res.Text, "\n")
			continue
		}

		doc = append(doc, line)
		ln.AppendHistory(line)
	}
}
