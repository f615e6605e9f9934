package httpapi

import (
	"bytes"
	"chat-collect/domain"
	"chat-collect/transcript"
	"embed"
	"html/template"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const adminTimeLayout = "2006-01-02 15:04:05"

type pages struct {
	tmpl *template.Template
}

func newPages(loc *time.Location, prefix string) *pages {
	funcs := template.FuncMap{
		"local": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format(adminTimeLayout)
		},
		"join":   strings.Join,
		"prefix": func() string { return prefix },
	}
	return &pages{tmpl: template.Must(template.New("pages").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))}
}

// render executes the page before writing anything so that a template error
// still yields a clean 500.
func (p *pages) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type chatroomData struct {
	Info     domain.JoinInfo
	Entries  []template.HTML
	Progress transcript.Progress
	Width    string
	Labels   transcript.Labels
	Hints    map[string]string
}

// chatroomPage renders what is already in the chatroom, which is not empty
// when a participant comes back to a dialog.
func (s *Server) chatroomPage(userID string, info domain.JoinInfo) chatroomData {
	events, err := s.service.Transcript(info.ChatroomID)
	if err != nil {
		s.log.Warn("Chatroom history unavailable", "chatroom", info.ChatroomID, "error", err)
	}
	history := transcript.New()
	history.Merge(lo.Map(events, func(e domain.Event, _ int) domain.Event {
		if e.From == userID {
			e.From = domain.Self
		} else {
			e.From = domain.Other
		}
		return e
	}))
	progress := history.Progress(info.MsgCountLow, info.MsgCountHigh)

	return chatroomData{
		Info: info,
		Entries: lo.Map(history.Events(), func(e domain.Event, _ int) template.HTML {
			return template.HTML(transcript.Render(e, info.IsFirstUser, transcript.DefaultLabels, s.cfg.Location).HTML())
		}),
		Progress: progress,
		Width:    strconv.FormatFloat(progress.Width, 'f', 1, 64),
		Labels:   transcript.DefaultLabels,
		Hints: map[string]string{
			"longEnough": transcript.NoticeLongEnough,
			"awaitReply": transcript.NoticeAwaitReply,
			"confirm":    transcript.ConfirmStop,
		},
	}
}

// static serves the embedded assets. Unknown extensions are sniffed.
func (s *Server) static(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("static/" + chi.URLParam(r, "*"))
	data, err := fs.ReadFile(staticFS, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}
