package archive

import (
	"chat-collect/domain"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newDialog(t *testing.T, id string, released time.Time, bodies ...string) domain.Dialog {
	t.Helper()
	room := domain.NewChatroom(id, "exp-1", "alice", released.Add(-time.Hour))
	room.AddUser("bob", released.Add(-time.Hour))
	for i, body := range bodies {
		from := "alice"
		if i%2 == 1 {
			from = "bob"
		}
		room.AddEvent(domain.MsgEvent, from, body, released.Add(-time.Minute))
	}
	room.AddEvent(domain.SysEvent, "bob", "left", released)
	return room.Dialog(released)
}

func TestDialogWriter_Write(t *testing.T) {
	req := require.New(t)
	root := t.TempDir()
	released := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)
	writer := NewDialogWriter(root, tokyo)
	dialog := newDialog(t, "room-1", released, "hello", "line one\nline two")

	// When the dialog is written
	path, err := writer.Write(dialog, "en")

	// Then the file lands in the local release day
	req.NoError(err)
	req.Equal(filepath.Join(root, "2024", "03", "02", "room-1.txt"), path)
	content, err := os.ReadFile(path)
	req.NoError(err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	req.Equal("# chatroom: room-1", lines[0])
	req.Contains(lines, "# closed: 2024-03-01T23:30:00.000000")
	req.Contains(lines, "# lang: en")

	// And only messages are listed, speakers numbered, newlines escaped
	messages := lines[5:]
	req.Len(messages, 2)
	req.True(strings.HasSuffix(messages[0], "|U1: hello"))
	req.True(strings.HasSuffix(messages[1], `|U2: line one\nline two`))
}

func TestArchiver_SkipsEmptyDialog(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	root := t.TempDir()
	archiver := NewArchiver(NewDialogWriter(root, time.UTC), nil, log)
	released := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := archiver.Archive(context.Background(), newDialog(t, "room-1", released))

	req.NoError(err)
	_, err = os.Stat(filepath.Join(root, "2024"))
	req.True(os.IsNotExist(err))
}

func TestArchiver_WritesAndIndexes(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := OpenIndex(t.TempDir(), log)
	req.NoError(err)
	defer index.Close()
	root := t.TempDir()
	archiver := NewArchiver(NewDialogWriter(root, time.UTC), index, log)
	released := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given two archived dialogs
	req.NoError(archiver.Archive(context.Background(), newDialog(t, "room-1", released, "do you like badgers", "yes badgers are great")))
	req.NoError(archiver.Archive(context.Background(), newDialog(t, "room-2", released, "こんにちは、今日はいい天気ですね", "そうですね")))

	// When searching for a word of the first one
	hits, err := index.Search(context.Background(), "badgers", "", 10)

	// Then only the first dialog is found
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("room-1", hits[0].ChatroomID)
	req.Equal("exp-1", hits[0].ExperimentID)
	req.Equal(released, hits[0].Released)
	req.Equal("do you like badgers", hits[0].Excerpt)

	// And filtering on another experiment finds nothing
	hits, err = index.Search(context.Background(), "badgers", "exp-2", 10)
	req.NoError(err)
	req.Empty(hits)

	_, err = os.Stat(filepath.Join(root, "2024", "03", "01", "room-2.txt"))
	req.NoError(err)
}

func TestDetectLanguage(t *testing.T) {
	req := require.New(t)
	messages := []domain.Event{{Type: domain.MsgEvent, Body: "こんにちは、今日はいい天気ですね"}}

	req.Equal("ja", DetectLanguage(messages))
	req.Equal("und", DetectLanguage([]domain.Event{{Type: domain.MsgEvent, Body: "1234"}}))
}
