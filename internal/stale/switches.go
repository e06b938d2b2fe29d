package stale

import (
	"bufio"
	"bytes"
	"strconv"
	"time"

	"github.com/google/renameio"
)

// Stamp renders a timestamp as the opaque byte-string form recorded on
// line 1 of a switches file: nanoseconds since the Unix epoch, decimal.
// Any two timestamps that compare equal under this encoding are
// considered the same file stamp by MatchesSwitches.
func Stamp(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// WriteSwitches atomically (re)writes the switches file at path: the
// object timestamp, then each argv element passed to the compiler, then
// each trailing required switch, one per line.
func WriteSwitches(path string, objectStamp string, argv []string, trailing []string) error {
	t, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	w := bufio.NewWriter(t)
	lines := make([]string, 0, 1+len(argv)+len(trailing))
	lines = append(lines, objectStamp)
	lines = append(lines, argv...)
	lines = append(lines, trailing...)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

// ReadSwitches parses a switches file's lines into its three logical
// sections. argvCount is the `last_switches_for_file` count recorded at
// the compile that produced this file: it is the only way to tell where
// the argv section ends and the trailing-switches section begins, since
// the file format itself carries no length prefix.
func ReadSwitches(data []byte, argvCount int) (objectStamp string, argv []string, trailing []string, err error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return "", nil, nil, err
	}
	if len(lines) < 1+argvCount {
		return "", nil, nil, errShortSwitchesFile
	}
	objectStamp = lines[0]
	argv = lines[1 : 1+argvCount]
	trailing = lines[1+argvCount:]
	return objectStamp, argv, trailing, nil
}

// MatchesSwitches reports whether a switches file's contents (data)
// contain exactly objectStamp, then argv, then trailing, in
// order, with no extra or missing lines.
func MatchesSwitches(data []byte, objectStamp string, argv []string, trailing []string) (bool, error) {
	gotStamp, gotArgv, gotTrailing, err := ReadSwitches(data, len(argv))
	if err != nil {
		return false, err
	}
	if gotStamp != objectStamp {
		return false, nil
	}
	if !stringsEqual(gotArgv, argv) {
		return false, nil
	}
	if !stringsEqual(gotTrailing, trailing) {
		return false, nil
	}
	return true, nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
