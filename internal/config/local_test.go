package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLocal(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LocalConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return dir
}

func TestLoadLocal_NoFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local != nil {
		t.Fatalf("expected nil, got %+v", local)
	}
}

func TestLoadLocal_EmptyFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(writeLocal(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local == nil {
		t.Fatal("expected non-nil local config for empty file")
	}
}

func TestLoadLocal_AllFields(t *testing.T) {
	t.Parallel()

	dir := writeLocal(t, `
[cache]
tag_ttl = "10m"
stash_ttl = "5s"

[merge]
no_ff = true

[rebase]
autostash = false

[hooks.changelog]
command = "make changelog"
on = ["tag-create"]

[hooks.notify]
enabled = false
`)

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.Cache.TagTTL == nil || *local.Cache.TagTTL != 10*time.Minute {
		t.Errorf("Cache.TagTTL = %v, want 10m", local.Cache.TagTTL)
	}
	if local.Cache.StashTTL == nil || *local.Cache.StashTTL != 5*time.Second {
		t.Errorf("Cache.StashTTL = %v, want 5s", local.Cache.StashTTL)
	}
	if local.Merge.NoFastForward == nil || !*local.Merge.NoFastForward {
		t.Errorf("Merge.NoFastForward = %v, want true", local.Merge.NoFastForward)
	}
	if local.Rebase.Autostash == nil || *local.Rebase.Autostash {
		t.Errorf("Rebase.Autostash = %v, want false", local.Rebase.Autostash)
	}
	if got := local.Hooks.Hooks["changelog"].Command; got != "make changelog" {
		t.Errorf("hooks.changelog.command = %q", got)
	}
	if local.Hooks.Hooks["notify"].IsEnabled() {
		t.Error("hooks.notify should be disabled")
	}
}

func TestLoadLocal_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid toml", "[cache\n", "failed to parse local config"},
		{"zero ttl", "[cache]\ntag_ttl = \"0s\"", "cache.tag_ttl"},
		{"unknown trigger", "[hooks.x]\ncommand = \"true\"\non = [\"commit\"]", LocalConfigFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadLocal(writeLocal(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
