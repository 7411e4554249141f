package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/nof-sh/C0-compiler/cc0"
	"github.com/nof-sh/C0-compiler/logger"
)

const usage = `Usage:
  cc0 [options] <input>

Compiles a C0 program. <input> may be - for standard input.

Options:
  -s                      write the text listing
  -c                      write the binary module
  -o, --output <path>     output path, - for standard output (default "out")
  -e, --encoding <name>   source encoding (default "utf-8")
  -l, --log-level <level> debug, info, warn or error (default "info")
  -h, --help              show this help
`

// Config holds the settings parsed from the command line.
type Config struct {
	Input    string
	Output   string
	Text     bool
	Binary   bool
	Encoding string
	LogLevel string
	ShowHelp bool
}

// valueFlags are the flags that take the following argument as their value.
var valueFlags = map[string]bool{
	"o": true, "output": true,
	"e": true, "encoding": true,
	"l": true, "log-level": true,
}

// ParseArgs parses the command line arguments, which may put flags after the
// input path.
func ParseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("cc0", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}
	fs.BoolVar(&config.Text, "s", false, "write the text listing")
	fs.BoolVar(&config.Binary, "c", false, "write the binary module")
	fs.StringVar(&config.Output, "output", "out", "output path")
	fs.StringVar(&config.Output, "o", "out", "output path (shorthand)")
	fs.StringVar(&config.Encoding, "encoding", cc0.DefaultEncoding, "source encoding")
	fs.StringVar(&config.Encoding, "e", cc0.DefaultEncoding, "source encoding (shorthand)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (shorthand)")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (shorthand)")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return nil, err
	}
	if config.ShowHelp {
		return config, nil
	}

	// Environment overrides, flags win.
	if config.LogLevel == "info" {
		if level := os.Getenv("CC0_LOG_LEVEL"); level != "" {
			config.LogLevel = strings.ToLower(level)
		}
	}
	if config.Encoding == cc0.DefaultEncoding {
		if encoding := os.Getenv("CC0_ENCODING"); encoding != "" {
			config.Encoding = encoding
		}
	}
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, err
	}

	if config.Text == config.Binary {
		return nil, errors.New("exactly one of -s and -c is required")
	}
	switch fs.NArg() {
	case 0:
		return nil, errors.New("missing input file")
	case 1:
		config.Input = fs.Arg(0)
	default:
		return nil, errors.Errorf("too many input files: %s", strings.Join(fs.Args(), " "))
	}
	if config.Output == "" {
		return nil, errors.New("empty output path")
	}

	return config, nil
}

// reorderArgs moves flags and their values in front of positional arguments.
// A lone "-" is positional.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}

		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if !strings.Contains(name, "=") && valueFlags[name] && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	return append(append(flags, "--"), positional...)
}

func main() {
	os.Exit(cc0Main())
}

func cc0Main() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	config, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "cc0: %v\n\n%s", err, usage)
		return 2
	}
	if config.ShowHelp {
		fmt.Fprint(stdout, usage)
		return 0
	}

	if err := logger.InitLogger(config.LogLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "cc0: %v\n", err)
		return 2
	}
	log := logger.GetLogger()

	program, err := compile(config, stdin)
	if err != nil {
		var compileErr *cc0.Error
		if errors.As(err, &compileErr) {
			fmt.Fprintln(stderr, compileErr.Error())
		} else {
			fmt.Fprintf(stderr, "cc0: %v\n", err)
		}
		return 2
	}
	log.Debug("compiled", "input", config.Input, "functions", len(program.Functions))

	var buf bytes.Buffer
	if config.Text {
		err = cc0.WriteListing(&buf, program)
	} else {
		err = cc0.WriteModule(&buf, program)
	}
	if err == nil {
		err = writeOutput(config, buf.Bytes(), stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "cc0: %v\n", err)
		return 2
	}

	log.Debug("wrote output", "path", config.Output, "size", humanize.Bytes(uint64(buf.Len())))
	return 0
}

// compile reads and compiles the configured input.
func compile(config *Config, stdin io.Reader) (*cc0.Program, error) {
	var input io.Reader = stdin
	if config.Input != "-" {
		f, err := os.Open(config.Input)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		input = f
	}

	source, err := cc0.NewSourceReader(input, config.Encoding)
	if err != nil {
		return nil, err
	}
	return cc0.Compile(source)
}

// writeOutput writes the finished output in one go, so a failed compilation
// never leaves a partial file behind.
func writeOutput(config *Config, data []byte, stdout io.Writer) error {
	if config.Output != "-" {
		return errors.Wrapf(os.WriteFile(config.Output, data, 0o644), "write %s", config.Output)
	}

	if f, ok := stdout.(*os.File); ok && config.Binary {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return errors.New("refusing to write a binary module to a terminal, use -o")
		}
	}
	_, err := stdout.Write(data)
	return errors.Wrap(err, "write standard output")
}
