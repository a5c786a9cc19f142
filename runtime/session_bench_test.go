package runtime_test

import (
	"context"
	"testing"

	"github.com/wippyai/eztrans/engine/enginetest"
)

// BenchmarkTranslate measures one full round trip through a stub engine:
// encode, call, decode and free.
func BenchmarkTranslate(b *testing.B) {
	ctx := context.Background()
	stub := enginetest.New(b.Name())
	stub.Reply = enginetest.Fixed([]byte{0xC7, 0xD1, 0xB1, 0xDB})

	sess := openSession(b, stub)
	defer sess.Close(ctx)
	if _, err := sess.Initialize(ctx, "CSUSER123455", "Dat"); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := sess.Translate(ctx, "こんにちは"); err != nil {
			b.Fatal(err)
		}
	}
}
