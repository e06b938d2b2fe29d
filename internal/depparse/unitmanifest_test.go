package depparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseUnitManifestBasic(t *testing.T) {
	data := "UNIT pkg.body\n" +
		"WITH ada.text_io.ads ada.text_io.d\n" +
		"WITH pkg.parent.ads pkg.parent.d\n"
	got, err := ParseUnitManifest([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	want := &UnitManifest{
		UnitName: "pkg.body",
		Used: []UsedUnit{
			{SourceBasename: "ada.text_io.ads", DepFileBasename: "ada.text_io.d"},
			{SourceBasename: "pkg.parent.ads", DepFileBasename: "pkg.parent.d"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseUnitManifest mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnitManifestSubunitsGatedByFlag(t *testing.T) {
	data := "UNIT pkg.body\n" +
		"SUBUNIT pkg.body.helper OF pkg.body helper.adb\n"

	withoutFlag, err := ParseUnitManifest([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(withoutFlag.Subunits) != 0 {
		t.Errorf("expected no subunits when includeSubunits=false, got %v", withoutFlag.Subunits)
	}

	withFlag, err := ParseUnitManifest([]byte(data), true)
	if err != nil {
		t.Fatal(err)
	}
	want := []SubunitDependency{{SubunitName: "pkg.body.helper", ParentUnitName: "pkg.body", SourceBasename: "helper.adb"}}
	if diff := cmp.Diff(want, withFlag.Subunits); diff != "" {
		t.Errorf("Subunits mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnitManifestMissingUnitRecord(t *testing.T) {
	_, err := ParseUnitManifest([]byte("WITH a.c a.d\n"), false)
	if err == nil {
		t.Fatal("expected error for manifest missing UNIT record")
	}
}

func TestParseUnitManifestMalformedWith(t *testing.T) {
	_, err := ParseUnitManifest([]byte("UNIT u\nWITH onlyone\n"), false)
	if err == nil {
		t.Fatal("expected error for malformed WITH record")
	}
}

func TestParseUnitManifestIgnoresCommentsAndBlankLines(t *testing.T) {
	data := "# header\nUNIT u\n\n# note\nWITH a.c a.d\n"
	got, err := ParseUnitManifest([]byte(data), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.UnitName != "u" || len(got.Used) != 1 {
		t.Errorf("got %+v", got)
	}
}
