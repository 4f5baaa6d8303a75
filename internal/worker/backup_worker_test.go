package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dompet/internal/core"
	"dompet/internal/feed"
	"dompet/internal/memory"
)

type recordingWriter struct {
	mu         sync.Mutex
	appended   []core.Transaction
	reversals  []string
	appendErr  error
	reverseErr error
}

func (w *recordingWriter) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if w.appendErr != nil {
		return "", w.appendErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.appended = append(w.appended, t)
	return "Ledger!A2:H2", nil
}

func (w *recordingWriter) AppendReversal(ctx context.Context, collection, id string) (string, error) {
	if w.reverseErr != nil {
		return "", w.reverseErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reversals = append(w.reversals, id)
	return "Ledger!A3:H3", nil
}

func TestHandleChangeAppendsTransaction(t *testing.T) {
	backend := memory.New()
	writer := &recordingWriter{}
	w := NewBackupWorker(backend, writer)

	ctx := context.Background()
	tx := &core.Transaction{
		ID:         "tx-1",
		OwnerID:    "user-1",
		Title:      "Groceries",
		Amount:     core.Money{Units: 150000},
		Kind:       core.Expense,
		OccurredAt: core.NewDate(2026, 1, 10),
	}
	if err := backend.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	msg := feed.NewChangeMessage("transactions", "insert", "tx-1", "user-1")
	if err := w.HandleChange(ctx, msg); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	if len(writer.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(writer.appended))
	}
	if writer.appended[0].Title != "Groceries" {
		t.Errorf("appended title = %q, want Groceries", writer.appended[0].Title)
	}
}

func TestHandleChangeDeleteAppendsReversal(t *testing.T) {
	w := NewBackupWorker(memory.New(), &recordingWriter{})
	writer := w.writer.(*recordingWriter)

	msg := feed.NewChangeMessage("transactions", "delete", "tx-gone", "user-1")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}
	if len(writer.reversals) != 1 || writer.reversals[0] != "tx-gone" {
		t.Fatalf("reversals = %v, want [tx-gone]", writer.reversals)
	}
}

func TestHandleChangeIgnoresOtherCollections(t *testing.T) {
	writer := &recordingWriter{}
	w := NewBackupWorker(memory.New(), writer)

	for _, collection := range []string{"savings_goals", "wishlist_items"} {
		msg := feed.NewChangeMessage(collection, "update", "x", "user-1")
		if err := w.HandleChange(context.Background(), msg); err != nil {
			t.Fatalf("HandleChange(%s) error = %v", collection, err)
		}
	}
	if len(writer.appended) != 0 || len(writer.reversals) != 0 {
		t.Fatal("non-transaction collections must not be mirrored")
	}
}

func TestHandleChangeSkipsVanishedTransaction(t *testing.T) {
	writer := &recordingWriter{}
	w := NewBackupWorker(memory.New(), writer)

	msg := feed.NewChangeMessage("transactions", "insert", "never-existed", "user-1")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("HandleChange() error = %v, want nil for vanished record", err)
	}
	if len(writer.appended) != 0 {
		t.Fatal("vanished record must not be appended")
	}
}

func TestHandleChangeReturnsWriterErrors(t *testing.T) {
	backend := memory.New()
	writer := &recordingWriter{appendErr: errors.New("sheets unavailable")}
	w := NewBackupWorker(backend, writer)

	ctx := context.Background()
	tx := &core.Transaction{
		ID:         "tx-1",
		OwnerID:    "user-1",
		Title:      "Groceries",
		Amount:     core.Money{Units: 150000},
		Kind:       core.Expense,
		OccurredAt: core.NewDate(2026, 1, 10),
	}
	if err := backend.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	msg := feed.NewChangeMessage("transactions", "insert", "tx-1", "user-1")
	if err := w.HandleChange(ctx, msg); err == nil {
		t.Fatal("writer failure must propagate so the message is requeued")
	}
}
