package version

import (
	"testing"

	"github.com/fatih/color"
)

func withValues(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate = version, commit, date
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, color.NoColor = origVersion, origCommit, origDate, origNoColor
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored_StripsWithoutColor(t *testing.T) {
	withValues(t, "1.2.3-rc1", "", "")
	if got := Colored(); got != "1.2.3-rc1" {
		t.Errorf("Colored() = %q", got)
	}
}

func TestColored_NonSemver(t *testing.T) {
	withValues(t, "nightly", "", "")
	if got := Colored(); got != "nightly" {
		t.Errorf("Colored() = %q", got)
	}
}
