package internal

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

// maxInspectRows bounds a page of the store inspector.
const maxInspectRows = 500

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Namespace string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow

type PageData struct {
	Prefix    string
	Items     []InspectRow
	Truncated bool
}

// Inspector lists the raw keys of the badger store under a prefix.
type Inspector struct {
	db     *badger.DB
	log    *slog.Logger
	mapper RowMapper
	tmpl   *template.Template
}

func NewInspector(db *badger.DB, log *slog.Logger, mapper RowMapper) *Inspector {
	if mapper == nil {
		mapper = DefaultMapper
	}
	return &Inspector{
		db:     db,
		log:    log,
		mapper: mapper,
		tmpl:   template.Must(template.ParseFS(templatesFS, "inspect.html")),
	}
}

func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "room:"
	}
	data := PageData{Prefix: prefix}

	err := i.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if len(data.Items) == maxInspectRows {
				data.Truncated = true
				return nil
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				data.Items = append(data.Items, i.mapper(string(item.Key()), val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		i.log.Error("Store inspection failed", "prefix", prefix, "error", err)
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := i.tmpl.Execute(w, data); err != nil {
		i.log.Warn("Store inspection page not rendered", "error", err)
	}
}

// DefaultMapper understands the event keys "evt:{chatroom}:{timestamp}:{uuid}"
// and the released chatroom keys "room:{released_nanos}:{chatroom}".
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Namespace: "default",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	kind, rest, ok := strings.Cut(key, ":")
	if !ok {
		return row
	}
	switch kind {
	case "evt":
		chatroom, tail, ok := strings.Cut(rest, ":")
		last := strings.LastIndexByte(tail, ':')
		if !ok || last < 0 {
			return row
		}
		row.Type = "EVENT"
		row.Namespace = chatroom
		row.Timestamp = tail[:last]
		row.EntityID = shortID(tail[last+1:])
	case "room":
		nanos, chatroom, ok := strings.Cut(rest, ":")
		if !ok {
			return row
		}
		row.Type = "RELEASED"
		row.Namespace = "room"
		if ts, err := strconv.ParseInt(nanos, 10, 64); err == nil {
			row.Timestamp = time.Unix(0, ts).UTC().Format("2006-01-02 15:04:05")
		}
		row.EntityID = shortID(chatroom)
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
