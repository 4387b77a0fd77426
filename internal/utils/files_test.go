package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := SafeWriteFile(p, []byte("[]\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "[]\n" {
		t.Fatalf("read back: %q %v", b, err)
	}
	if FileExists(p + ".tmp") {
		t.Fatalf("temp file left behind")
	}
	if !FileExists(p) || FileExists(filepath.Dir(p)) {
		t.Fatalf("FileExists mismatch")
	}
}
