// Package runtime provides the high-level API for driving the translation engine.
//
// # Quick Start
//
//	ctx := context.Background()
//	sess, err := runtime.Load(ctx, "/opt/ezTrans/J2KEngine.dll")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	// Start the engine
//	if _, err := sess.Initialize(ctx, "CSUSER123455", "/opt/ezTrans/Dat"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Translate
//	out, err := sess.Translate(ctx, "こんにちは")
//	fmt.Println(out) // "안녕하세요"
//
// # Lifecycle
//
// A Session moves through three states:
//
//	Loaded       - library mapped, entry points resolved
//	Initialized  - Initialize succeeded; Translate is allowed
//	Terminated   - Terminate or Close ran; nothing reaches the engine again
//
// Translate before Initialize fails with a not_initialized error without
// calling the engine. Close always terminates the engine exactly once and
// then unmaps the library, whatever state the session is in.
//
// # Status Codes
//
// Initialize returns the engine's status verbatim. Whether a status means
// success is decided by a StatusCheck, NonZeroSuccess by default:
//
//	sess, err := runtime.Load(ctx, path,
//	    runtime.WithStatusCheck(func(s runtime.Status) bool { return s == 1 }))
//
// # Exclusivity
//
// The engine keeps hidden process-wide state, so only one Session per
// library path is live at a time. Load waits for the previous session on the
// same path to close and gives up with a busy load error when ctx ends.
//
// # Tracing
//
// Sessions emit OpenTelemetry spans eztrans.initialize, eztrans.translate
// and eztrans.terminate through the provider set with WithTracerProvider, or
// the global provider.
//
// # Thread Safety
//
// A Session is NOT safe for concurrent use. Calls into the engine block and
// cannot be cancelled once started; ctx is checked before each call.
package runtime
