package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates an in-memory SQLite store for testing
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================================
// Store Lifecycle Tests
// ============================================================================

func TestNew(t *testing.T) {
	store := newTestStore(t)

	if store.db == nil {
		t.Error("Expected db to be initialized")
	}

	if store.logger == nil {
		t.Error("Expected logger to be initialized")
	}
}

func TestNew_ReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := New(path, logger)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second, err := New(path, logger)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer second.Close()

	var count int
	if err := second.db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("migrations recorded = %d, want 1", count)
	}
}

func TestClose(t *testing.T) {
	store, err := New(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if _, err := store.ListAccounts(); err == nil {
		t.Error("Expected error when using closed store, but got nil")
	}
}

// ============================================================================
// Payload Tests
// ============================================================================

func TestSavePayload(t *testing.T) {
	store := newTestStore(t)

	exportedAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	rec := &PayloadRecord{Version: 1, BatchSize: 2, BatchIndex: 1, BatchID: -42, ExportedAt: exportedAt}
	if err := store.SavePayload(rec); err != nil {
		t.Fatalf("SavePayload() failed: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("Expected ID to be set after SavePayload")
	}

	got, err := getPayload(store, rec.ID)
	if err != nil {
		t.Fatalf("reading payload failed: %v", err)
	}
	if got.Version != 1 || got.BatchSize != 2 || got.BatchIndex != 1 || got.BatchID != -42 {
		t.Errorf("unexpected payload: %+v", got)
	}
	if !got.ExportedAt.Equal(exportedAt) {
		t.Errorf("ExportedAt = %v, want %v", got.ExportedAt, exportedAt)
	}

	if _, err := getPayload(store, rec.ID+100); err == nil {
		t.Error("Expected error for missing payload")
	}
}

// getPayload reads a payload row back for assertions.
func getPayload(s *Store, id int64) (*PayloadRecord, error) {
	const query = `
		SELECT id, version, batch_size, batch_index, batch_id, exported_at
		FROM payloads WHERE id = ?
	`

	rec := &PayloadRecord{}
	err := s.db.QueryRow(query, id).Scan(
		&rec.ID, &rec.Version, &rec.BatchSize, &rec.BatchIndex, &rec.BatchID, &rec.ExportedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ============================================================================
// Account Tests
// ============================================================================

func TestUpsertAccount_LastWriteWinsKeepsPosition(t *testing.T) {
	store := newTestStore(t)

	rec := &PayloadRecord{Version: 1, BatchSize: 1, ExportedAt: time.Now()}
	if err := store.SavePayload(rec); err != nil {
		t.Fatalf("SavePayload() failed: %v", err)
	}

	accounts := []*Account{
		{Name: "alice", Issuer: "A", Type: "TOTP", Value: "first", PayloadID: rec.ID},
		{Name: "bob", Issuer: "B", Type: "HOTP", Value: "BBBB", PayloadID: rec.ID},
		{Name: "alice", Issuer: "A2", Type: "TOTP", Value: "second", PayloadID: rec.ID},
	}
	for _, acc := range accounts {
		if err := store.UpsertAccount(acc); err != nil {
			t.Fatalf("UpsertAccount(%s) failed: %v", acc.Name, err)
		}
	}

	if accounts[0].Position != accounts[2].Position {
		t.Errorf("replaced account moved: %d != %d", accounts[0].Position, accounts[2].Position)
	}

	got, err := store.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d accounts, want 2", len(got))
	}
	if got[0].Name != "alice" || got[0].Value != "second" || got[0].Issuer != "A2" {
		t.Errorf("first account = %+v, want alice/second/A2", got[0])
	}
	if got[1].Name != "bob" || got[1].Type != "HOTP" {
		t.Errorf("second account = %+v, want bob/HOTP", got[1])
	}
}

func TestListAccounts_Empty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d accounts, want 0", len(got))
	}
}
