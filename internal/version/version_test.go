package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "1.2.3"
	got := String()
	if !strings.Contains(got, "1.2.3") {
		t.Errorf("String() = %q, want it to contain the version", got)
	}
	if !strings.HasPrefix(got, "pointreduce ") {
		t.Errorf("String() = %q, want program name prefix", got)
	}
}
