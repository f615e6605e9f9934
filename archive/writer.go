// Package archive keeps released dialogs: one text file per dialog, grouped
// by release day, and a full-text index over their messages.
package archive

import (
	"bufio"
	"chat-collect/domain"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var bodyEscaper = strings.NewReplacer("\\", "\\\\", "\r", "\\r", "\n", "\\n")

// DialogWriter writes dialogs under root/YYYY/MM/DD/<chatroom id>.txt.
// Directories follow the release day in loc.
type DialogWriter struct {
	root string
	loc  *time.Location
}

func NewDialogWriter(root string, loc *time.Location) DialogWriter {
	if loc == nil {
		loc = time.Local
	}
	return DialogWriter{root: root, loc: loc}
}

// Path returns where a dialog released at the given instant is written.
func (w DialogWriter) Path(chatroomID string, released time.Time) string {
	local := released.In(w.loc)
	return filepath.Join(w.root,
		fmt.Sprintf("%04d", local.Year()),
		fmt.Sprintf("%02d", int(local.Month())),
		fmt.Sprintf("%02d", local.Day()),
		chatroomID+".txt")
}

// Write stores the header and every message of the dialog, one message per
// line as "<timestamp>|U<n>: <body>".
func (w DialogWriter) Write(dialog domain.Dialog, lang string) (string, error) {
	path := w.Path(dialog.ID, dialog.Released)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create dialog directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dialog file: %w", err)
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	fmt.Fprintf(out, "# chatroom: %s\n", dialog.ID)
	fmt.Fprintf(out, "# experiment: %s\n", dialog.ExperimentID)
	fmt.Fprintf(out, "# created: %s\n", domain.FormatTimestamp(dialog.Created))
	fmt.Fprintf(out, "# closed: %s\n", domain.FormatTimestamp(dialog.Released))
	fmt.Fprintf(out, "# lang: %s\n", lang)
	for _, evt := range dialog.Messages() {
		fmt.Fprintf(out, "%s|U%d: %s\n", evt.Timestamp, dialog.Speaker(evt.From), bodyEscaper.Replace(evt.Body))
	}
	if err := out.Flush(); err != nil {
		return "", fmt.Errorf("write dialog file: %w", err)
	}
	return path, f.Close()
}
