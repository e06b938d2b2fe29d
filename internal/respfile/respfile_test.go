package respfile

import (
	"os"
	"testing"

	"github.com/gprtools/compiledriver/internal/tempfile"
)

func TestWritePlainFormat(t *testing.T) {
	dir := t.TempDir()
	reg := tempfile.New(false)
	path, err := Write(reg, dir, "resp-*.args", FormatPlain, []string{"-c", "foo.c", "-o", "foo.o"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "-c\nfoo.c\n-o\nfoo.o\n"
	if string(b) != want {
		t.Errorf("plain response file = %q, want %q", b, want)
	}
	if paths := reg.Paths(); len(paths) != 1 || paths[0] != path {
		t.Errorf("registry paths = %v, want [%s]", paths, path)
	}
}

func TestWriteQuotedFormat(t *testing.T) {
	dir := t.TempDir()
	reg := tempfile.New(false)
	path, err := Write(reg, dir, "resp-*.args", FormatQuoted, []string{"-c", "foo.c"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "INPUT (\n\"-c\"\n\"foo.c\"\n)\n"
	if string(b) != want {
		t.Errorf("quoted response file = %q, want %q", b, want)
	}
}

func TestRegistryReclaimsResponseFile(t *testing.T) {
	dir := t.TempDir()
	reg := tempfile.New(false)
	path, err := Write(reg, dir, "resp-*.args", FormatPlain, []string{"-c"})
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected response file to be reclaimed, stat err = %v", err)
	}
}
