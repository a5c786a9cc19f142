package engine_test

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/eztrans/errors"
)

func asError(err error, target **errors.Error) bool {
	return stderrors.As(err, target)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
