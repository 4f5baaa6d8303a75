// Package worker consumes change messages and mirrors transactions into
// the Google Sheets backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dompet/internal/core"
	"dompet/internal/feed"
	"dompet/internal/ledger"
)

// BackupWriter appends rows to the backup spreadsheet.
type BackupWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
	AppendReversal(ctx context.Context, collection, id string) (string, error)
}

// BackupWorker mirrors transaction changes into the sheets backup.
// Inserts and updates append the current row; deletes append a reversal
// marker so backup history is never rewritten.
type BackupWorker struct {
	backend ledger.Store
	writer  BackupWriter
}

func NewBackupWorker(backend ledger.Store, writer BackupWriter) *BackupWorker {
	return &BackupWorker{backend: backend, writer: writer}
}

// HandleChange processes one change message. Errors are returned so the
// consumer nacks and requeues; a record that vanished between the event
// and the fetch is skipped rather than retried forever.
func (w *BackupWorker) HandleChange(ctx context.Context, msg *feed.ChangeMessage) error {
	if ledger.Collection(msg.Collection) != ledger.Transactions {
		// Goal and wishlist changes are visible through their
		// contribution transactions; only transactions are mirrored.
		return nil
	}

	slog.InfoContext(ctx, "Processing change message",
		"collection", msg.Collection,
		"kind", msg.Kind,
		"id", msg.ID)

	if msg.Kind == "delete" {
		ref, err := w.writer.AppendReversal(ctx, msg.Collection, msg.ID)
		if err != nil {
			return fmt.Errorf("append reversal row: %w", err)
		}
		slog.InfoContext(ctx, "Recorded deletion in backup", "id", msg.ID, "sheets_ref", ref)
		return nil
	}

	t, err := w.backend.GetTransaction(ctx, msg.OwnerID, msg.ID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction vanished before backup, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.writer.AppendTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("append transaction row: %w", err)
	}

	slog.InfoContext(ctx, "Backed up transaction",
		"id", msg.ID,
		"amount_units", t.Amount.Units,
		"sheets_ref", ref)
	return nil
}
