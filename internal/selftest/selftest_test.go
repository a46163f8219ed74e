package selftest

import (
	"bytes"
	"testing"
)

func TestRunReportsNoFailures(t *testing.T) {
	var buf bytes.Buffer
	if failures := Run(&buf); failures != 0 {
		t.Fatalf("selftest reported %d failures:\n%s", failures, buf.String())
	}
}
