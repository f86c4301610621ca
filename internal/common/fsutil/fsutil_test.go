package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	exp, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "models" {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestResolveFile(t *testing.T) {
	d := t.TempDir()
	f := filepath.Join(d, "model.onnx")
	if err := os.WriteFile(f, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ResolveFile(f)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != f {
		t.Fatalf("expected %q, got %q", f, got)
	}

	if _, err := ResolveFile(filepath.Join(d, "missing.onnx")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := ResolveFile(d); err == nil {
		t.Fatalf("expected error for directory")
	}
}
