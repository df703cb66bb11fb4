package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestQuotaBytes(t *testing.T) {
	q := quotaConfig{
		FreeMaxSize:    "50MB",
		PremiumMaxSize: "garbage",
		ChunkSize:      "2MiB",
		FreeSpeedLimit: "1MB",
	}
	if got := q.FreeMaxBytes(); got != 50_000_000 {
		t.Errorf("FreeMaxBytes() = %d", got)
	}
	if got := q.PremiumMaxBytes(); got != 4_000_000_000 {
		t.Errorf("PremiumMaxBytes() fallback = %d", got)
	}
	if got := q.ChunkBytes(); got != 2<<20 {
		t.Errorf("ChunkBytes() = %d", got)
	}
	if got := q.FreeSpeedBytes(); got != 1_000_000 {
		t.Errorf("FreeSpeedBytes() = %d", got)
	}
	if got := (quotaConfig{}).FreeSpeedBytes(); got != 0 {
		t.Errorf("empty FreeSpeedBytes() = %d", got)
	}
}

func TestTerabox(t *testing.T) {
	tests := []struct {
		name    string
		hosts   map[string]any
		want    FolderMode
		wantErr bool
	}{
		{name: "default", hosts: nil, want: FolderModeEach},
		{name: "zip", hosts: map[string]any{"terabox": map[string]any{"folder_mode": "zip", "cookie": "x"}}, want: FolderModeZip},
		{name: "invalid", hosts: map[string]any{"terabox": map[string]any{"folder_mode": "tar"}}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tb, err := sourceConfig{Hosts: tc.hosts}.Terabox()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Terabox() error = %v", err)
			}
			if tb.FolderMode != tc.want {
				t.Fatalf("FolderMode = %q; want %q", tb.FolderMode, tc.want)
			}
		})
	}
}

func TestInitFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
owners = [42]

[telegram]
token = "123:abc"

[quota]
free_daily_limit = 3
free_max_size = "50MB"

[source.terabox]
folder_mode = "zip"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(context.Background(), path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	c := C()
	if c.Telegram.Token != "123:abc" || !c.IsOwner(42) {
		t.Fatalf("telegram/owners not loaded: %+v", c.Telegram)
	}
	if c.Quota.FreeDailyLimit != 3 || c.Quota.FreeMaxBytes() != 50_000_000 {
		t.Fatalf("quota = %+v", c.Quota)
	}
	if c.Progress.Interval != 8*time.Second {
		t.Fatalf("default progress interval = %s", c.Progress.Interval)
	}
	tb, err := c.Source.Terabox()
	if err != nil || tb.FolderMode != FolderModeZip {
		t.Fatalf("terabox = %+v, err = %v", tb, err)
	}
}
