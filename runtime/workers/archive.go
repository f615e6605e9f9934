package workers

import (
	"chat-collect/contract"
	"chat-collect/domain"
	"context"
	"log/slog"
	"time"
)

// ArchiveWorker consumes released dialogs and hands them to the archiver.
// On shutdown the dialogs already queued are still archived, within the
// drain timeout.
type ArchiveWorker struct {
	log          *slog.Logger
	dialogs      <-chan domain.Dialog
	archiver     contract.Archiver
	drainTimeout time.Duration
}

func NewArchiveWorker(log *slog.Logger, dialogs <-chan domain.Dialog, archiver contract.Archiver, drainTimeout time.Duration) *ArchiveWorker {
	return &ArchiveWorker{log: log, dialogs: dialogs, archiver: archiver, drainTimeout: drainTimeout}
}

func (w *ArchiveWorker) Run(ctx context.Context) error {
	for {
		select {
		case dialog, ok := <-w.dialogs:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.archive(ctx, dialog)
		case <-ctx.Done():
			w.drain()
			return nil
		}
	}
}

func (w *ArchiveWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()
	for {
		select {
		case dialog, ok := <-w.dialogs:
			if !ok {
				return
			}
			w.archive(ctx, dialog)
		default:
			return
		}
	}
}

func (w *ArchiveWorker) archive(ctx context.Context, dialog domain.Dialog) {
	if err := w.archiver.Archive(ctx, dialog); err != nil {
		w.log.Error("Dialog not archived", "chatroom", dialog.ID, "error", err)
	}
}
