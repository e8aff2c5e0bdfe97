package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/brettkolodny/blllc/pkg/asm"
	"github.com/brettkolodny/blllc/pkg/compiler"
	"github.com/brettkolodny/blllc/pkg/utils"
	"github.com/brettkolodny/blllc/pkg/vm"
)

const appName = "blllc"

type options struct {
	emit     string
	outPath  string
	run      bool
	stats    bool
	maxDepth int
	verbose  bool
}

// output is everything produced for one input file.
type output struct {
	path   string
	stream asm.Stream
	code   []byte
	stack  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

// colorable reports whether w is a terminal that understands ANSI escapes.
func colorable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.emit, "emit", "hex", "output form: hex, items or asm")
	fs.StringVar(&opts.outPath, "o", "", "write output to this file instead of stdout (single input only)")
	fs.BoolVar(&opts.run, "run", false, "execute the bytecode on the reference machine and print the final stack")
	fs.BoolVar(&opts.stats, "stats", false, "print code size and instruction counts to stderr")
	fs.IntVar(&opts.maxDepth, "max-depth", compiler.DefaultMaxDepth, "maximum expression nesting; 0 disables the check")
	fs.BoolVar(&opts.verbose, "v", false, "log each compilation stage")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] file...\n\n", appName)
		fmt.Fprintf(fs.Output(), "Files ending in %s are item listings and are assembled directly.\n", utils.ListingExt)
		fmt.Fprintf(fs.Output(), "Jump targets are one byte, so every JUMPDEST must lie in the first %d bytes of the output.\n\n", asm.MaxJumpTarget+1)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	diag := func(msg string) {
		if colorable(stderr) {
			msg = red(msg)
		}
		fmt.Fprintln(stderr, msg)
	}

	files := fs.Args()
	if len(files) == 0 {
		diag("nothing to do: provide one or more source files")
		fs.Usage()
		return 2
	}
	switch opts.emit {
	case "hex", "items", "asm":
	default:
		diag(fmt.Sprintf("unknown -emit %q: want hex, items or asm", opts.emit))
		return 2
	}
	if opts.outPath != "" && len(files) > 1 {
		diag("-o takes a single input file")
		return 2
	}
	if opts.maxDepth < 0 {
		diag("-max-depth must not be negative")
		return 2
	}

	logger := log.New(io.Discard, appName+": ", 0)
	if opts.verbose {
		logger.SetOutput(stderr)
	}

	outputs := make([]*output, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			out, err := build(path, opts, logger)
			outputs[i], errs[i] = out, err
			return err
		})
	}
	failed := g.Wait() != nil

	var text strings.Builder
	for i, out := range outputs {
		if errs[i] != nil {
			diag(fmt.Sprintf("%s: %v", files[i], errs[i]))
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(&text, "; %s\n", out.path)
		}
		if err := render(&text, out, opts.emit); err != nil {
			diag(fmt.Sprintf("%s: %v", files[i], err))
			failed = true
			continue
		}
		if opts.run {
			fmt.Fprintf(&text, "stack: %s\n", out.stack)
		}
		if opts.stats {
			if err := printStats(stderr, out); err != nil {
				diag(fmt.Sprintf("%s: stats: %v", files[i], err))
				failed = true
			}
		}
	}

	if opts.outPath != "" {
		if err := utils.WriteOutput(opts.outPath, []byte(text.String())); err != nil {
			diag(err.Error())
			return 1
		}
		logger.Printf("wrote %s", opts.outPath)
	} else {
		io.WriteString(stdout, text.String())
	}

	if failed {
		return 1
	}
	return 0
}

// build compiles or assembles one file and optionally runs it.
func build(path string, opts options, logger *log.Logger) (*output, error) {
	src, err := utils.ReadSource(path)
	if err != nil {
		return nil, err
	}
	out := &output{path: path}

	if src.IsListing() {
		logger.Printf("%s: assembling listing", path)
		out.stream, err = asm.ParseStream(src.Text)
		if err != nil {
			return nil, err
		}
		out.code, err = asm.Assemble(out.stream)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Printf("%s: compiling %d bytes of source", path, len(src.Text))
		c := compiler.New()
		c.MaxDepth = opts.maxDepth
		res, err := c.Build(src.Text)
		if err != nil {
			return nil, err
		}
		logger.Printf("%s: %d tokens, %d items", path, len(res.Tokens), len(res.Stream))
		out.stream, out.code = res.Stream, res.Code
	}

	if opts.run {
		m := vm.New(out.code)
		if err := m.Run(); err != nil {
			return nil, fmt.Errorf("run: %w (stack %s)", err, m.StackString())
		}
		logger.Printf("%s: halted after %d steps", path, m.Steps)
		out.stack = m.StackString()
	}
	return out, nil
}

func render(w io.Writer, out *output, emit string) error {
	switch emit {
	case "items":
		_, err := fmt.Fprintln(w, out.stream)
		return err
	case "asm":
		listing, err := asm.Listing(out.code)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, listing)
		return err
	default:
		_, err := fmt.Fprintf(w, "%x\n", out.code)
		return err
	}
}

func printStats(w io.Writer, out *output) error {
	instrs, err := asm.Disassemble(out.code)
	if err != nil {
		return err
	}
	jumps := 0
	for _, in := range instrs {
		if in.Op == vm.OpJUMP || in.Op == vm.OpJUMPI {
			jumps++
		}
	}
	fmt.Fprintf(w, "%s: %s, %s instructions, %s jumps\n",
		out.path, humanize.Bytes(uint64(len(out.code))), humanize.Comma(int64(len(instrs))), humanize.Comma(int64(jumps)))
	return nil
}
