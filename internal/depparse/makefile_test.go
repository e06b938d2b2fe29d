package depparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMakefileBasic(t *testing.T) {
	data := "foo.o: foo.c foo.h bar.h\n"
	got, err := ParseMakefile([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	want := &MakefileDeps{
		Target:        "foo.o",
		Prerequisites: []string{"foo.c", "foo.h", "bar.h"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseMakefile mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMakefileContinuation(t *testing.T) {
	data := "foo.o: foo.c \\\n  bar.h \\\n  baz.h\n"
	got, err := ParseMakefile([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"foo.c", "bar.h", "baz.h"}
	if diff := cmp.Diff(want, got.Prerequisites); diff != "" {
		t.Errorf("Prerequisites mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMakefileIgnoresCommentsAndBlankLines(t *testing.T) {
	data := "# comment\n\nfoo.o: foo.c\n\n# trailing\n"
	got, err := ParseMakefile([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Target != "foo.o" || len(got.Prerequisites) != 1 || got.Prerequisites[0] != "foo.c" {
		t.Errorf("got %+v", got)
	}
}

func TestParseMakefileEscapedSpace(t *testing.T) {
	data := `foo.o: foo.c path\ with\ space.h` + "\n"
	got, err := ParseMakefile([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"foo.c", "path with space.h"}
	if diff := cmp.Diff(want, got.Prerequisites); diff != "" {
		t.Errorf("Prerequisites mismatch (-want +got):\n%s", diff)
	}
}

// TestParseMakefileWindowsBackslashQuirk pins the deliberately-reproduced
// behavior: a doubled backslash is only collapsed to one literal
// backslash when it is the first character of a prerequisite token;
// elsewhere in the token it passes through unchanged.
func TestParseMakefileWindowsBackslashQuirk(t *testing.T) {
	data := `foo.o: \\a\\b.h` + "\n"
	got, err := ParseMakefile([]byte(data), true)
	if err != nil {
		t.Fatal(err)
	}
	// Leading "\\" collapses (token-start quirk); the second "\\" later in
	// the same token does not, so both backslashes survive there.
	want := []string{`\a\\b.h`}
	if diff := cmp.Diff(want, got.Prerequisites); diff != "" {
		t.Errorf("Prerequisites mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMakefileNoWindowsQuirkOnPosix(t *testing.T) {
	data := `foo.o: \\a.h` + "\n"
	got, err := ParseMakefile([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`\\a.h`}
	if diff := cmp.Diff(want, got.Prerequisites); diff != "" {
		t.Errorf("Prerequisites mismatch (-want +got):\n%s", diff)
	}
}
