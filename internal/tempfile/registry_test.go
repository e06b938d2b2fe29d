package tempfile

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRegistryReclaimsOnClose(t *testing.T) {
	dir := t.TempDir()
	r := New(false)
	a := touch(t, dir, "a")
	b := touch(t, dir, "b")
	r.Register(a)
	r.Register(b)

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed, stat err = %v", p, err)
		}
	}
}

func TestRegistryKeepsTempsWhenRequested(t *testing.T) {
	dir := t.TempDir()
	r := New(true)
	a := touch(t, dir, "a")
	r.Register(a)

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(a); err != nil {
		t.Errorf("expected %s to survive Close with KeepTemps, got %v", a, err)
	}
}

func TestRegisterAfterClosePanics(t *testing.T) {
	r := New(false)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic registering after Close")
		}
	}()
	r.Register("/tmp/whatever")
}
