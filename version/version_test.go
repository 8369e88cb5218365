package version

import (
	"runtime/debug"
	"testing"
)

func TestApplySettings(t *testing.T) {
	info := Info{Version: "1.2.0"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("GitCommit = %q, want short revision", info.GitCommit)
	}
	if info.BuildTime != "2026-03-01T12:00:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
	if !info.Dirty {
		t.Error("expected dirty build")
	}
	if got := info.String(); got != "1.2.0-0123456-dirty" {
		t.Errorf("String() = %q", got)
	}
}

func TestApplySettingsKeepsLinkerValues(t *testing.T) {
	info := Info{Version: "1.2.0", GitCommit: "feedbee", BuildTime: "then"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "now"},
	})
	if info.GitCommit != "feedbee" || info.BuildTime != "then" {
		t.Errorf("linker values overwritten: %+v", info)
	}
}

func TestGet(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "dev"
	if Get().Release {
		t.Error("dev builds are never releases")
	}
	if Get().String() == "" {
		t.Error("expected a version string")
	}
}
