package runtime

import (
	"bytes"
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/engine"
	"github.com/wippyai/eztrans/errors"
	"github.com/wippyai/eztrans/transcoder"
)

// State is a session's position in the engine lifecycle.
type State int

const (
	StateLoaded State = iota
	StateInitialized
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session drives one engine through initialize, translate and terminate.
// It owns the engine and its library; Close terminates the engine exactly
// once and unmaps the library.
//
// A Session is not safe for concurrent use.
type Session struct {
	eng     *engine.Engine
	bridge  *transcoder.Bridge
	tracer  trace.Tracer
	check   StatusCheck
	release func()
	path    string
	mode    Mode
	state   State
	closed  bool
}

// Load maps the engine library at path and resolves its entry points.
// It waits for any other live session on the same path to close, returning a
// busy load error if ctx ends first.
func Load(ctx context.Context, path string, opts ...Option) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(errors.PhaseLoad, err)
	}

	release, err := acquireSlot(ctx, path)
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	eng, err := engine.Open(path, o.alloc)
	if err != nil {
		release()
		return nil, err
	}

	return newSession(eng, release, o), nil
}

// New creates a session over an already loaded library and takes ownership
// of it. On error lib is closed.
func New(ctx context.Context, lib eztrans.Library, opts ...Option) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, multierr.Append(errors.Canceled(errors.PhaseLoad, err), lib.Close())
	}

	release, err := acquireSlot(ctx, lib.Path())
	if err != nil {
		return nil, multierr.Append(err, lib.Close())
	}

	o := newOptions(opts)
	eng, err := engine.New(lib, o.alloc)
	if err != nil {
		release()
		return nil, multierr.Append(err, lib.Close())
	}

	return newSession(eng, release, o), nil
}

func newSession(eng *engine.Engine, release func(), o *options) *Session {
	Logger().Debug("session opened", zap.String("path", eng.Path()))
	return &Session{
		eng:     eng,
		bridge:  o.bridge,
		tracer:  o.tp.Tracer(tracerName),
		check:   o.check,
		release: release,
		path:    eng.Path(),
		mode:    o.mode,
		state:   StateLoaded,
	}
}

// Path returns the library path.
func (s *Session) Path() string {
	return s.path
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Mode returns the mode Translate uses.
func (s *Session) Mode() Mode {
	return s.mode
}

// Initialize starts the engine with an init token and the directory holding
// its dictionaries. The status is returned verbatim. A status the session's
// StatusCheck rejects is returned together with an init status error and
// the session stays loaded, so Initialize may be retried.
//
// Both strings are passed as bytes without re-encoding.
func (s *Session) Initialize(ctx context.Context, initString, homeDir string) (Status, error) {
	ctx, span := s.tracer.Start(ctx, "eztrans.initialize",
		trace.WithAttributes(attribute.String("eztrans.library", s.path)))
	defer span.End()

	status, err := s.initialize(ctx, initString, homeDir)
	span.SetAttributes(attribute.Int("eztrans.status", int(status)))
	recordError(span, err)
	return status, err
}

func (s *Session) initialize(ctx context.Context, initString, homeDir string) (Status, error) {
	switch {
	case s.closed, s.state == StateTerminated:
		return 0, errors.Terminated(errors.PhaseInit)
	case s.state == StateInitialized:
		return 0, errors.AlreadyInitialized()
	}

	initBytes, err := transcoder.CString("init string", initString)
	if err != nil {
		return 0, err
	}
	homeBytes, err := transcoder.CString("home directory", homeDir)
	if err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, errors.Canceled(errors.PhaseInit, err)
	}

	raw, err := s.eng.Initialize(initBytes, homeBytes)
	if err != nil {
		return 0, err
	}

	status := Status(raw)
	if !s.check(status) {
		Logger().Warn("engine rejected initialization",
			zap.String("path", s.path),
			zap.Int32("status", raw))
		return status, errors.Status(errors.PhaseInit, engine.SymbolInitialize, raw)
	}

	s.state = StateInitialized
	Logger().Debug("session initialized",
		zap.String("path", s.path),
		zap.Int32("status", raw))
	return status, nil
}

// Translate translates text with the session's mode.
func (s *Session) Translate(ctx context.Context, text string) (string, error) {
	return s.TranslateMode(ctx, s.mode, text)
}

// TranslateMode translates Japanese text to Korean using mode.
//
// Text is encoded to Shift_JIS; characters Shift_JIS cannot represent and
// embedded NUL bytes are reported as encoding errors before the engine is
// called. The engine's EUC-KR output is decoded into a Go string and the
// engine buffer freed before returning.
func (s *Session) TranslateMode(ctx context.Context, mode Mode, text string) (string, error) {
	ctx, span := s.startTranslate(ctx, mode)
	defer span.End()

	out, err := s.translate(ctx, mode, text)
	recordError(span, err)
	return out, err
}

func (s *Session) translate(ctx context.Context, mode Mode, text string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	input, err := s.bridge.EncodeInput(text)
	if err != nil {
		return "", err
	}

	fs, err := s.call(ctx, mode, input)
	if err != nil {
		return "", err
	}
	defer fs.Release()

	return s.bridge.DecodeOutput(fs.Bytes()), nil
}

// TranslateRaw passes already encoded Shift_JIS input to the engine and
// returns its result buffer undecoded. input must not contain NUL; the
// terminator is added. The caller must Release the result.
func (s *Session) TranslateRaw(ctx context.Context, mode Mode, input []byte) (*engine.ForeignString, error) {
	ctx, span := s.startTranslate(ctx, mode)
	defer span.End()

	fs, err := s.translateRaw(ctx, mode, input)
	recordError(span, err)
	return fs, err
}

func (s *Session) translateRaw(ctx context.Context, mode Mode, input []byte) (*engine.ForeignString, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(input, 0); i >= 0 {
		return nil, errors.EmbeddedNul("input bytes", i)
	}

	buf := make([]byte, len(input)+1)
	copy(buf, input)
	return s.call(ctx, mode, buf)
}

func (s *Session) startTranslate(ctx context.Context, mode Mode) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "eztrans.translate",
		trace.WithAttributes(
			attribute.String("eztrans.library", s.path),
			attribute.Int("eztrans.mode", int(mode)),
		))
}

func (s *Session) ready() error {
	switch {
	case s.closed, s.state == StateTerminated:
		return errors.Terminated(errors.PhaseTranslate)
	case s.state == StateLoaded:
		return errors.NotInitialized(errors.PhaseTranslate)
	}
	return nil
}

// call invokes the engine with NUL-terminated input.
func (s *Session) call(ctx context.Context, mode Mode, input []byte) (*engine.ForeignString, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("eztrans.input_bytes", len(input)-1))

	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(errors.PhaseTranslate, err)
	}

	fs, err := s.eng.Translate(int32(mode), input)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("eztrans.output_bytes", fs.Len()))
	return fs, nil
}

// Terminate shuts the engine down. Translate fails afterwards; Close still
// unmaps the library. Only the first call reaches the engine.
// Cancellation of ctx does not stop termination.
func (s *Session) Terminate(ctx context.Context) error {
	if s.closed || s.state == StateTerminated {
		return nil
	}

	_, span := s.tracer.Start(ctx, "eztrans.terminate",
		trace.WithAttributes(attribute.String("eztrans.library", s.path)))
	defer span.End()

	s.state = StateTerminated
	raw, err := s.eng.Terminate()
	if err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("eztrans.status", int(raw)))
	if !s.check(Status(raw)) {
		Logger().Warn("engine terminate reported failure",
			zap.String("path", s.path),
			zap.Int32("status", raw))
		err = errors.Status(errors.PhaseTerminate, engine.SymbolTerminate, raw)
		recordError(span, err)
		return err
	}

	Logger().Debug("session terminated", zap.String("path", s.path))
	return nil
}

// Close terminates the engine if that has not happened yet, unmaps the
// library and frees the session's slot. Termination and unmapping happen
// even when ctx is done or the session was never initialized.
// Calling Close again is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	defer s.release()

	err := s.Terminate(context.WithoutCancel(ctx))
	s.closed = true
	err = multierr.Append(err, s.eng.Close())

	Logger().Debug("session closed",
		zap.String("path", s.path),
		zap.Error(err))
	return err
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
