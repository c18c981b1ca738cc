package version

import "testing"

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldBuild := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = oldVersion, oldCommit, oldBuild })

	Version, Commit, BuildTime = "1.2.0", "abc1234", "2026-10-14T00:00:00Z"

	if got, want := String(), "1.2.0 (abc1234) built 2026-10-14T00:00:00Z"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDefaults(t *testing.T) {
	if Version == "" || Commit == "" || BuildTime == "" {
		t.Errorf("empty default: Version=%q Commit=%q BuildTime=%q", Version, Commit, BuildTime)
	}
}
