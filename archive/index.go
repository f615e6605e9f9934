package archive

import (
	"chat-collect/domain"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/samber/lo"
)

const (
	fieldID         = "_id"
	fieldBody       = "body"
	fieldExperiment = "experiment"
	fieldLang       = "lang"
	fieldReleased   = "released"
	fieldMessages   = "messages"
)

// Hit is one archived dialog matching a search.
type Hit struct {
	ChatroomID   string    `json:"chatroomId"`
	ExperimentID string    `json:"experimentId"`
	Lang         string    `json:"lang"`
	Released     time.Time `json:"released"`
	Excerpt      string    `json:"excerpt"`
	Score        float64   `json:"score"`
}

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func OpenIndex(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open dialog index: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// Add indexes the messages of a dialog. Adding the same chatroom twice
// replaces the previous document.
func (i *Index) Add(dialog domain.Dialog, lang string) error {
	messages := dialog.Messages()
	body := strings.Join(lo.Map(messages, func(e domain.Event, _ int) string { return e.Body }), "\n")

	doc := bluge.NewDocument(dialog.ID).
		AddField(bluge.NewTextField(fieldBody, body).StoreValue()).
		AddField(bluge.NewKeywordField(fieldExperiment, dialog.ExperimentID).StoreValue()).
		AddField(bluge.NewKeywordField(fieldLang, lang).StoreValue()).
		AddField(bluge.NewDateTimeField(fieldReleased, dialog.Released).StoreValue()).
		AddField(bluge.NewNumericField(fieldMessages, float64(len(messages))).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns at most limit dialogs whose messages match the query.
// An empty experiment searches every experiment.
func (i *Index) Search(ctx context.Context, text, experiment string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().AddMust(bluge.NewMatchQuery(text).SetField(fieldBody))
	if experiment != "" {
		query.AddMust(bluge.NewTermQuery(experiment).SetField(fieldExperiment))
	}
	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search dialog index: %w", err)
	}

	var hits []Hit
	match, err := iterator.Next()
	for err == nil && match != nil {
		hit := Hit{Score: match.Score}
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldID:
				hit.ChatroomID = string(value)
			case fieldExperiment:
				hit.ExperimentID = string(value)
			case fieldLang:
				hit.Lang = string(value)
			case fieldBody:
				hit.Excerpt = excerpt(string(value), text)
			case fieldReleased:
				if released, decodeErr := bluge.DecodeDateTime(value); decodeErr == nil {
					hit.Released = released.UTC()
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	i.log.Debug("Dialog index searched", "query", text, "hits", len(hits))
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// excerpt returns the first line of body containing one of the query terms,
// or the first line when none does.
func excerpt(body, query string) string {
	lines := strings.Split(body, "\n")
	terms := strings.Fields(strings.ToLower(query))
	line, ok := lo.Find(lines, func(l string) bool {
		lower := strings.ToLower(l)
		return lo.SomeBy(terms, func(t string) bool { return strings.Contains(lower, t) })
	})
	if !ok {
		line = lines[0]
	}
	runes := []rune(line)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return line
}
