package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/engine"
	"github.com/wippyai/eztrans/internal/config"
	"github.com/wippyai/eztrans/internal/telemetry"
	"github.com/wippyai/eztrans/runtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		libPath     = flag.String("lib", cfg.Library, "Path to the engine library (J2KEngine.dll)")
		homeDir     = flag.String("home", cfg.Home, "Engine dictionary directory (default: Dat next to the library)")
		initKey     = flag.String("init", cfg.InitKey, "Engine init key")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		symbols     = flag.Bool("symbols", false, "Check the library's entry points and exit")
	)
	flag.Var(&int32Flag{&cfg.Mode}, "mode", "Translate mode passed to the engine (32-bit signed)")
	flag.Parse()

	cfg.Library = *libPath
	cfg.Home = *homeDir
	cfg.InitKey = *initKey
	if *verbose {
		cfg.LogLevel = "debug"
	}

	if cfg.Library == "" {
		fmt.Fprintln(os.Stderr, "Usage: eztrans -lib <J2KEngine.dll> [-home dir] [-mode n] text...")
		fmt.Fprintln(os.Stderr, "       eztrans -lib <J2KEngine.dll> < input.txt")
		fmt.Fprintln(os.Stderr, "       eztrans -lib <J2KEngine.dll> -symbols")
		fmt.Fprintln(os.Stderr, "       eztrans -lib <J2KEngine.dll> -i  (interactive mode)")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	engine.SetLogger(log.Named("engine"))
	runtime.SetLogger(log.Named("runtime"))

	if *symbols {
		if err := runSymbols(os.Stdout, cfg.Library); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	tp, shutdown, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}
	defer shutdown(ctx)

	opts := []runtime.Option{runtime.WithMode(runtime.Mode(cfg.Mode))}
	if tp != nil {
		opts = append(opts, runtime.WithTracerProvider(tp))
	}

	if *interactive {
		if err := runInteractive(cfg, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, opts, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	return zc.Build()
}

// openSession loads and initializes the engine described by cfg.
func openSession(ctx context.Context, cfg config.Config, opts []runtime.Option) (*runtime.Session, error) {
	sess, err := runtime.Load(ctx, cfg.Library, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := sess.Initialize(ctx, cfg.InitKey, cfg.HomeDir()); err != nil {
		return nil, multierr.Append(err, sess.Close(ctx))
	}
	return sess, nil
}

func run(ctx context.Context, cfg config.Config, opts []runtime.Option, args []string) (err error) {
	sess, err := openSession(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, sess.Close(ctx))
	}()

	if len(args) > 0 {
		return translateAll(ctx, sess, args, os.Stdout, os.Stderr)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no text given; pass arguments, pipe input or use -i")
	}
	return translateLines(ctx, sess, os.Stdin, os.Stdout, os.Stderr)
}

type translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// translateAll writes one translated line per text. Failures are reported on
// errw and the remaining texts still translated.
func translateAll(ctx context.Context, tr translator, texts []string, w, errw io.Writer) error {
	var failed int
	for _, text := range texts {
		out, err := tr.Translate(ctx, text)
		if err != nil {
			fmt.Fprintf(errw, "%q: %v\n", text, err)
			failed++
			continue
		}
		fmt.Fprintln(w, out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d texts failed", failed, len(texts))
	}
	return nil
}

// translateLines translates r line by line. Empty lines are echoed without
// calling the engine.
func translateLines(ctx context.Context, tr translator, r io.Reader, w, errw io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines, failed int
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lines++
		if line == "" {
			fmt.Fprintln(w)
			continue
		}

		out, err := tr.Translate(ctx, line)
		if err != nil {
			fmt.Fprintf(errw, "line %d: %v\n", lines, err)
			fmt.Fprintln(w)
			failed++
			continue
		}
		fmt.Fprintln(w, out)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed", failed, lines)
	}
	return nil
}

func runSymbols(w io.Writer, path string) error {
	lib, err := engine.Load(path)
	if err != nil {
		return err
	}
	defer lib.Close()

	return checkSymbols(w, lib)
}

// checkSymbols reports which engine entry points lib exports.
// Only the required entry points make it fail.
func checkSymbols(w io.Writer, lib eztrans.Library) error {
	symbols := []struct {
		fptr     any
		name     string
		required bool
	}{
		{new(engine.InitializeFunc), engine.SymbolInitialize, true},
		{new(engine.TranslateFunc), engine.SymbolTranslate, true},
		{new(engine.TerminateFunc), engine.SymbolTerminate, true},
		{new(engine.FreeFunc), engine.SymbolFreeMem, false},
	}

	fmt.Fprintf(w, "Library: %s\n\n", lib.Path())

	var missing error
	for _, p := range symbols {
		status := "ok"
		if err := lib.Bind(p.name, p.fptr); err != nil {
			status = "missing"
			if p.required {
				missing = multierr.Append(missing, err)
			} else {
				status = "missing (optional, C runtime free is used)"
			}
		}
		fmt.Fprintf(w, "  %-18s %s\n", p.name, status)
	}
	return missing
}

// int32Flag is a flag.Value that rejects values outside the int32 range
// instead of truncating them.
type int32Flag struct {
	p *int32
}

func (f *int32Flag) String() string {
	if f.p == nil {
		return "0"
	}
	return strconv.FormatInt(int64(*f.p), 10)
}

func (f *int32Flag) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return err
	}
	*f.p = int32(v)
	return nil
}
