package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/brettkolodny/blllc/pkg/asm"
	"github.com/brettkolodny/blllc/pkg/compiler"
	"github.com/brettkolodny/blllc/pkg/utils"
	"github.com/brettkolodny/blllc/pkg/vm"
)

const (
	historyFile = ".blll_history"
	promptMain  = "blll> "
	promptCont  = "  ... "
)

const banner = "blll console\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands."

const helpText = `REPL commands:
  :quit    Exit the console
  :help    Show this text
  :asm     Toggle disassembly of each result
  :run     Toggle running each result on the machine
`

var color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func red(s string) string {
	if !color {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func blue(s string) string {
	if !color {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}

// session holds the console toggles between inputs.
type session struct {
	showAsm bool
	run     bool
	c       *compiler.Compiler
}

func newSession() *session {
	return &session{run: true, c: compiler.New()}
}

// command handles a ':' line. ok is false for unknown commands.
func (s *session) command(line string) (out string, quit, ok bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q":
		return "", true, true
	case ":help":
		return helpText, false, true
	case ":asm":
		s.showAsm = !s.showAsm
		return fmt.Sprintf("disassembly %s\n", onOff(s.showAsm)), false, true
	case ":run":
		s.run = !s.run
		return fmt.Sprintf("execution %s\n", onOff(s.run)), false, true
	}
	return "", false, false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// eval compiles src and renders the result the way the console prints it.
func (s *session) eval(src string) (string, error) {
	res, err := s.c.Build(src)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(res.Hex())
	b.WriteByte('\n')

	if s.showAsm {
		listing, err := asm.Listing(res.Code)
		if err != nil {
			return "", err
		}
		b.WriteString(listing)
	}

	if s.run {
		m := vm.New(res.Code)
		if err := m.Run(); err != nil {
			return b.String(), fmt.Errorf("run: %w (stack %s)", err, m.StackString())
		}
		fmt.Fprintf(&b, "stack: %s\n", m.StackString())
	}
	return b.String(), nil
}

// readUntilComplete reads lines until they form a complete program or a
// definite error.
func readUntilComplete(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMore(src) {
			return src, true
		}
	}
}

// needsMore reports whether src ends inside an open list or string.
func needsMore(src string) bool {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return compiler.IsIncomplete(err)
	}
	_, err = compiler.Parse(tokens, src)
	return compiler.IsIncomplete(err)
}

func main() {
	s := newSession()

	// An optional file argument is compiled and run before the prompt.
	if len(os.Args) > 1 {
		src, err := utils.ReadSource(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to read source file: %v", err)
		}
		log.Printf("Compiling source file: %s", src.FullPath)
		out, err := s.eval(src.Text)
		fmt.Print(blue(out))
		if err != nil {
			log.Fatalf("Compilation failed: %v", err)
		}
	}

	fmt.Println(banner)

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
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
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

	for {
		src, ok := readUntilComplete(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			out, quit, known := s.command(src)
			if quit {
				return
			}
			if !known {
				fmt.Println("unknown command. Type :help for commands.")
				continue
			}
			fmt.Print(out)
			continue
		}

		out, err := s.eval(src)
		fmt.Print(blue(out))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}
