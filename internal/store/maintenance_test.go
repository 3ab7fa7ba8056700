package store

import (
	"context"
	"testing"
	"time"
)

func TestBackupClearRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	st.Set(ctx, "users", `[{"email":"a@x.com"}]`)
	st.Set(ctx, "theme", "dark")
	st.Set(ctx, "login_time", "1724668800000")

	doc, err := st.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if doc.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, doc.Version)
	}
	if doc.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if len(doc.Data) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(doc.Data))
	}

	removed, err := st.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
	if keys, _ := st.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expected empty store after clear, got %v", keys)
	}

	report, err := st.Restore(ctx, doc)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !report.OK || report.Restored != 3 || report.Failed != 0 {
		t.Errorf("unexpected restore report: %+v", report)
	}

	val, ok, _ := st.Get(ctx, "users")
	if !ok || val != `[{"email":"a@x.com"}]` {
		t.Errorf("users not restored exactly: ok=%v val=%q", ok, val)
	}
	val, ok, _ = st.Get(ctx, "theme")
	if !ok || val != "dark" {
		t.Errorf("theme not restored exactly: ok=%v val=%q", ok, val)
	}
}

func TestRestoreRejectsBadDocuments(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	if _, err := st.Restore(ctx, nil); err == nil {
		t.Error("expected error for nil document")
	}
	if _, err := st.Restore(ctx, &BackupDocument{Version: BackupVersion}); err == nil {
		t.Error("expected error for document without data")
	}
	if _, err := st.Restore(ctx, &BackupDocument{
		Version:   "2.0",
		Timestamp: time.Now(),
		Data:      map[string]string{"theme": "dark"},
	}); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestIntegrityCheckFlagsCorruptedValues(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	st.Set(ctx, "users", `[{"email":"a@x.com"}]`)
	st.Set(ctx, "current_user", `{bad json`)
	st.Set(ctx, "session_token", "1724668800000.deadbeef") // plain string, not examined

	report, err := st.IntegrityCheck(ctx)
	if err != nil {
		t.Fatalf("IntegrityCheck failed: %v", err)
	}

	if len(report.Valid) != 1 || report.Valid[0] != "users" {
		t.Errorf("unexpected valid keys: %v", report.Valid)
	}
	if len(report.Invalid) != 1 {
		t.Fatalf("expected 1 invalid key, got %d", len(report.Invalid))
	}
	if report.Invalid[0].Key != "current_user" {
		t.Errorf("expected current_user flagged, got %s", report.Invalid[0].Key)
	}
	if report.Invalid[0].Error == "" {
		t.Error("expected decode error to be recorded")
	}
}

func TestCleanupRemovesOnlyCorruptedKeys(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	st.Set(ctx, "users", `[{"email":"a@x.com"}]`)
	st.Set(ctx, "current_user", `{bad json`)
	st.Set(ctx, "theme", "dark")

	removed, err := st.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	if _, ok, _ := st.Get(ctx, "current_user"); ok {
		t.Error("expected corrupted key removed")
	}
	if _, ok, _ := st.Get(ctx, "users"); !ok {
		t.Error("expected valid key untouched")
	}
	if _, ok, _ := st.Get(ctx, "theme"); !ok {
		t.Error("expected plain string key untouched")
	}
}

func TestUsageInfoCountsWholeStore(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)

	st.Set(ctx, "theme", "dark")      // printwise_theme(15) + dark(4)
	mr.Set("foreign_key", "abcdefgh") // foreign_key(11) + abcdefgh(8)

	info, err := st.UsageInfo(ctx)
	if err != nil {
		t.Fatalf("UsageInfo failed: %v", err)
	}

	if info.Keys != 2 {
		t.Errorf("expected 2 keys counted, got %d", info.Keys)
	}
	want := int64(len("printwise_theme") + len("dark") + len("foreign_key") + len("abcdefgh"))
	if info.Bytes != want {
		t.Errorf("expected %d bytes, got %d", want, info.Bytes)
	}
	if info.KB != float64(want)/1024 {
		t.Errorf("unexpected KB figure: %v", info.KB)
	}
}

func TestClearLeavesForeignKeys(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)

	st.Set(ctx, "theme", "dark")
	mr.Set("foreign_key", "x")

	removed, err := st.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if !mr.Exists("foreign_key") {
		t.Error("foreign key must survive a prefixed clear")
	}
}
