package engine_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/eztrans/engine"
	"github.com/wippyai/eztrans/engine/enginetest"
	"github.com/wippyai/eztrans/errors"
)

func cstr(s string) []byte {
	return append([]byte(s), 0)
}

func newEngine(t *testing.T, stub *enginetest.Stub) *engine.Engine {
	t.Helper()
	eng, err := engine.New(stub, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func TestResolve(t *testing.T) {
	stub := enginetest.New(t.Name())
	eps, err := engine.Resolve(stub)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if eps.Path() != t.Name() {
		t.Errorf("Path() = %q, want %q", eps.Path(), t.Name())
	}
}

func TestResolve_MissingSymbol(t *testing.T) {
	for _, name := range engine.SymbolNames {
		t.Run(name, func(t *testing.T) {
			stub := enginetest.New(t.Name())
			stub.Missing = []string{name}

			eps, err := engine.Resolve(stub)
			if err == nil {
				t.Fatal("expected symbol error")
			}
			if eps != nil {
				t.Error("partial table returned")
			}
			if !errors.IsSymbol(err) {
				t.Errorf("expected symbol error, got %v", err)
			}

			var e *errors.Error
			if !asError(err, &e) || e.Symbol != name {
				t.Errorf("error does not name %s: %v", name, err)
			}
		})
	}
}

func TestResolve_FirstMissingReported(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.Missing = []string{engine.SymbolTerminate, engine.SymbolTranslate}

	_, err := engine.Resolve(stub)
	var e *errors.Error
	if !asError(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Symbol != engine.SymbolTranslate {
		t.Errorf("Symbol = %q, want %q", e.Symbol, engine.SymbolTranslate)
	}
}

func TestNew_ClosedLibrary(t *testing.T) {
	stub := enginetest.New(t.Name())
	_ = stub.Close()

	if _, err := engine.New(stub, nil); err == nil {
		t.Fatal("expected error resolving from a closed library")
	}
}

func TestEngine_Initialize(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.InitStatus = 7
	eng := newEngine(t, stub)
	defer eng.Close()

	status, err := eng.Initialize(cstr("CSUSER123455"), cstr("/opt/ezTrans/Dat"))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if status != 7 {
		t.Errorf("status = %d, want 7", status)
	}

	initStr, home := stub.LastInit()
	if initStr != "CSUSER123455" || home != "/opt/ezTrans/Dat" {
		t.Errorf("engine saw (%q, %q)", initStr, home)
	}
}

func TestEngine_RequiresTerminator(t *testing.T) {
	stub := enginetest.New(t.Name())
	eng := newEngine(t, stub)
	defer eng.Close()

	if _, err := eng.Initialize([]byte("CSUSER"), cstr("")); err == nil {
		t.Error("initialize accepted an unterminated init string")
	}
	if _, err := eng.Translate(0, []byte("abc")); err == nil {
		t.Error("translate accepted unterminated input")
	}
	if _, err := eng.Translate(0, nil); err == nil {
		t.Error("translate accepted empty buffer")
	}
	if stub.InitCalls.Load() != 0 || stub.TranslateCalls.Load() != 0 {
		t.Error("entry point called with invalid input")
	}
}

func TestEngine_Translate(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.Reply = enginetest.Fixed([]byte{0xB0, 0xA1})
	eng := newEngine(t, stub)
	defer eng.Close()

	fs, err := eng.Translate(3, cstr("\x82\xa0"))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	if !bytes.Equal(fs.Bytes(), []byte{0xB0, 0xA1}) {
		t.Errorf("Bytes() = % x", fs.Bytes())
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}

	mode, input := stub.LastTranslate()
	if mode != 3 || !bytes.Equal(input, []byte{0x82, 0xa0}) {
		t.Errorf("engine saw mode %d input % x", mode, input)
	}

	if eng.Outstanding() != 1 {
		t.Errorf("Outstanding() = %d, want 1", eng.Outstanding())
	}

	fs.Release()
	if !fs.Released() || fs.Bytes() != nil || fs.Len() != 0 {
		t.Error("released string still exposes data")
	}
	if eng.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d after release", eng.Outstanding())
	}
	if stub.Frees.Load() != 1 || stub.Live() != 0 {
		t.Errorf("frees = %d live = %d", stub.Frees.Load(), stub.Live())
	}
}

func TestEngine_EmptyResult(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.Reply = enginetest.Fixed([]byte{})
	eng := newEngine(t, stub)
	defer eng.Close()

	fs, err := eng.Translate(0, cstr("x"))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	defer fs.Release()

	if fs.Len() != 0 || len(fs.Bytes()) != 0 {
		t.Errorf("expected empty result, got % x", fs.Bytes())
	}
}

func TestEngine_NullResult(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.Reply = enginetest.Null
	eng := newEngine(t, stub)
	defer eng.Close()

	fs, err := eng.Translate(0, cstr("x"))
	if err == nil {
		t.Fatal("expected null result error")
	}
	if fs != nil {
		t.Error("foreign string created for null result")
	}
	if !errors.IsTranslation(err) {
		t.Errorf("expected translation error, got %v", err)
	}
	if stub.Frees.Load() != 0 {
		t.Errorf("null result was freed %d times", stub.Frees.Load())
	}
}

func TestForeignString_ReleaseOnce(t *testing.T) {
	stub := enginetest.New(t.Name())
	eng := newEngine(t, stub)
	defer eng.Close()

	fs, err := eng.Translate(0, cstr("abc"))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	for range 3 {
		fs.Release()
	}

	if got := stub.Frees.Load(); got != 1 {
		t.Errorf("frees = %d, want 1", got)
	}
	if got := stub.BadFrees.Load(); got != 0 {
		t.Errorf("bad frees = %d", got)
	}
}

func TestEngine_FreesMatchResults(t *testing.T) {
	stub := enginetest.New(t.Name())
	calls := 0
	stub.Reply = func(_ int32, in []byte) []byte {
		calls++
		if calls%3 == 0 {
			return nil
		}
		return in
	}
	eng := newEngine(t, stub)

	nonNull := 0
	for range 10 {
		fs, err := eng.Translate(0, cstr("x"))
		if err != nil {
			continue
		}
		nonNull++
		fs.Release()
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := int(stub.Frees.Load()); got != nonNull {
		t.Errorf("frees = %d, non-null results = %d", got, nonNull)
	}
	if stub.Live() != 0 || stub.BadFrees.Load() != 0 {
		t.Errorf("live = %d bad = %d", stub.Live(), stub.BadFrees.Load())
	}
}

func TestEngine_TerminateReleasesOutstanding(t *testing.T) {
	stub := enginetest.New(t.Name())
	eng := newEngine(t, stub)
	defer eng.Close()

	a, _ := eng.Translate(0, cstr("a"))
	b, _ := eng.Translate(0, cstr("b"))

	status, err := eng.Terminate()
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if status != 1 {
		t.Errorf("status = %d, want 1", status)
	}

	if !a.Released() || !b.Released() {
		t.Error("outstanding strings not released before terminate")
	}
	if stub.Frees.Load() != 2 || stub.Live() != 0 {
		t.Errorf("frees = %d live = %d", stub.Frees.Load(), stub.Live())
	}

	// Releasing after the engine did so is a no-op.
	a.Release()
	if stub.Frees.Load() != 2 {
		t.Errorf("frees = %d after late release", stub.Frees.Load())
	}
}

func TestEngine_Close(t *testing.T) {
	stub := enginetest.New(t.Name())
	eng := newEngine(t, stub)

	fs, _ := eng.Translate(0, cstr("a"))

	if err := eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if !eng.Closed() {
		t.Error("Closed() = false after Close")
	}
	if stub.Closes.Load() != 1 {
		t.Errorf("library closed %d times, want 1", stub.Closes.Load())
	}
	if !fs.Released() || stub.Frees.Load() != 1 {
		t.Error("outstanding string not released on close")
	}

	for name, call := range map[string]func() error{
		"initialize": func() error { _, err := eng.Initialize(cstr(""), cstr("")); return err },
		"translate":  func() error { _, err := eng.Translate(0, cstr("")); return err },
		"terminate":  func() error { _, err := eng.Terminate(); return err },
	} {
		err := call()
		if err == nil {
			t.Errorf("%s succeeded after close", name)
			continue
		}
		var e *errors.Error
		if !asError(err, &e) || e.Kind != errors.KindClosed {
			t.Errorf("%s: expected closed error, got %v", name, err)
		}
	}

	if stub.CallsAfterClose.Load() != 0 {
		t.Errorf("%d entry-point calls after close", stub.CallsAfterClose.Load())
	}
}

func TestEngine_CustomAllocator(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.Missing = []string{engine.SymbolFreeMem}

	eng, err := engine.New(stub, stub.Allocator())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	fs, err := eng.Translate(0, cstr("abc"))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	fs.Release()

	if stub.Frees.Load() != 1 || stub.BadFrees.Load() != 0 {
		t.Errorf("frees = %d bad = %d", stub.Frees.Load(), stub.BadFrees.Load())
	}
}

func TestLibraryAllocator_Missing(t *testing.T) {
	stub := enginetest.New(t.Name())
	stub.Missing = []string{engine.SymbolFreeMem}

	_, err := engine.LibraryAllocator(stub, engine.SymbolFreeMem)
	if !errors.IsSymbol(err) {
		t.Errorf("expected symbol error, got %v", err)
	}
}

func TestCStringView(t *testing.T) {
	if engine.CStringView(nil) != nil {
		t.Error("nil pointer should yield nil view")
	}
}
