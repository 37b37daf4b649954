package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
)

func writeFile(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	return path
}

func TestSweepRemovesExpiredArtifacts(t *testing.T) {
	dir := t.TempDir()
	config := &common.ExportConfig{
		CacheDir:       dir,
		SweepSchedule:  "0 */30 * * * *",
		MaxArtifactAge: "1h",
	}
	svc := NewService(config, arbor.NewLogger())

	old := time.Now().Add(-2 * time.Hour)
	expired := writeFile(t, dir, "doc_old.pdf", old)
	fresh := writeFile(t, dir, "doc_new.pdf", time.Now())
	other := writeFile(t, dir, "notes.txt", old)

	svc.sweep()

	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Error("Expired artifact not swept")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Fresh artifact swept")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("Non-PDF file swept")
	}
}

func TestStartWithEmptyScheduleDisablesSweep(t *testing.T) {
	config := &common.ExportConfig{CacheDir: t.TempDir(), SweepSchedule: "", MaxArtifactAge: "1h"}
	svc := NewService(config, arbor.NewLogger())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	svc.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	config := &common.ExportConfig{CacheDir: t.TempDir(), SweepSchedule: "not a cron expr", MaxArtifactAge: "1h"}
	svc := NewService(config, arbor.NewLogger())

	if err := svc.Start(); err == nil {
		t.Error("Expected error for malformed schedule")
		svc.Stop()
	}
}
