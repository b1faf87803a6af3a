package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleDirEnv names a directory of real .evtx files. Tests using samples
// are skipped when neither it nor testdata/samples exists.
const SampleDirEnv = "EVTXKIT_SAMPLES"

// DefaultSampleDir is relative to the repository root.
const DefaultSampleDir = "testdata/samples"

// resolveSamplePath finds name in $EVTXKIT_SAMPLES or in testdata/samples
// walking up from the package directory.
func resolveSamplePath(t testing.TB, name string) string {
	t.Helper()

	var candidates []string
	if dir := os.Getenv(SampleDirEnv); dir != "" {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	prefix := ""
	for range 5 {
		candidates = append(candidates, filepath.Join(prefix+DefaultSampleDir, name))
		prefix += "../"
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skipf("Sample %s not found (set %s)", name, SampleDirEnv)
	return ""
}
