package archive

import (
	"chat-collect/domain"
	"context"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

// Archiver writes a released dialog to disk and adds it to the index.
// Dialogs without any message are skipped.
type Archiver struct {
	writer DialogWriter
	index  *Index
	log    *slog.Logger
}

func NewArchiver(writer DialogWriter, index *Index, log *slog.Logger) *Archiver {
	return &Archiver{writer: writer, index: index, log: log}
}

func (a *Archiver) Archive(ctx context.Context, dialog domain.Dialog) error {
	messages := dialog.Messages()
	if len(messages) == 0 {
		a.log.Debug("Nothing to archive", "chatroom", dialog.ID)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	lang := DetectLanguage(messages)
	path, err := a.writer.Write(dialog, lang)
	if err != nil {
		return err
	}
	if a.index != nil {
		if err := a.index.Add(dialog, lang); err != nil {
			return err
		}
	}
	a.log.Info("Dialog archived", "chatroom", dialog.ID, "path", path, "messages", len(messages), "lang", lang)
	return nil
}

// DetectLanguage returns the ISO 639-1 code of the dialog language, or "und"
// when it cannot be told reliably.
func DetectLanguage(messages []domain.Event) string {
	text := strings.Join(lo.Map(messages, func(e domain.Event, _ int) string { return e.Body }), " ")
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "und"
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "und"
	}
	return code
}
