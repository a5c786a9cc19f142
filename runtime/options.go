package runtime

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/transcoder"
)

// Mode is the engine's translate mode. Its meaning is engine-defined and it
// is passed through unchanged.
type Mode int32

// DefaultMode is the mode Translate uses unless WithMode says otherwise.
const DefaultMode Mode = 0

// Status is a raw status code returned by the engine.
type Status int32

// StatusCheck decides whether an engine status means success.
type StatusCheck func(Status) bool

// NonZeroSuccess treats any non-zero status as success, which is what the
// engine's initializer reports on a good start.
func NonZeroSuccess(s Status) bool {
	return s != 0
}

const tracerName = "github.com/wippyai/eztrans/runtime"

type options struct {
	alloc  eztrans.Allocator
	check  StatusCheck
	tp     trace.TracerProvider
	bridge *transcoder.Bridge
	mode   Mode
}

// Option configures a Session.
type Option func(*options)

// WithMode sets the mode Translate passes to the engine.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithAllocator sets the allocator that frees translate results.
// By default the engine's J2K_FreeMem is used when exported, else the C
// runtime's free.
func WithAllocator(a eztrans.Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithStatusCheck replaces the predicate that judges initialize and
// terminate statuses. The default is NonZeroSuccess.
func WithStatusCheck(fn StatusCheck) Option {
	return func(o *options) {
		if fn != nil {
			o.check = fn
		}
	}
}

// WithTracerProvider sets the provider for session spans.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// WithBridge sets the encoding bridge. The package-wide bridge is used by default.
func WithBridge(b *transcoder.Bridge) Option {
	return func(o *options) {
		o.bridge = b
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		mode:  DefaultMode,
		check: NonZeroSuccess,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tp == nil {
		o.tp = otel.GetTracerProvider()
	}
	if o.bridge == nil {
		o.bridge = transcoder.Default()
	}
	return o
}
