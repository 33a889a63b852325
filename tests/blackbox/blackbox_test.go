//go:build blackbox

package blackbox

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var foresightBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "foresight-blackbox-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	foresightBin = filepath.Join(tmp, "foresight")

	// Build the binary once for all tests. The test binary runs from
	// this package's directory, hence the relative path.
	cmd := exec.Command("go", "build", "-o", foresightBin, "../../cmd/foresight")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) (stdout string, stderr string) {
	t.Helper()

	cmd := exec.Command(foresightBin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		// CombinedOutput merges stdout/stderr; still useful in failures.
		t.Fatalf("command failed: %v\nargs: %v\noutput:\n%s", err, args, string(out))
	}
	return string(out), ""
}

// runFails is run for commands that must exit non-zero.
func runFails(t *testing.T, args ...string) string {
	t.Helper()

	cmd := exec.Command(foresightBin, args...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected failure\nargs: %v\noutput:\n%s", args, string(out))
	}
	return string(out)
}
