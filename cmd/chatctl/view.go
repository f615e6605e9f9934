package main

import (
	"chat-collect/client"
	"chat-collect/domain"
	"chat-collect/transcript"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"
)

var stateMessages = map[client.State]string{
	client.StateWaiting:  "相手を待っています...",
	client.StateActive:   "対話が始まりました。メッセージを入力して下さい (/stop で終了)",
	client.StateOver:     "相手が対話を終了しました。",
	client.StateTryLater: "相手が見つかりませんでした。しばらくしてからもう一度お試し下さい。",
	client.StateStopped:  "対話を終了しました。",
	client.StateThanks:   "ご協力ありがとうございました。",
}

var linkStyle = color.New(color.FgCyan, color.OpUnderscore)

// terminalView prints a chat session on a terminal.
type terminalView struct {
	mu       sync.Mutex
	out      io.Writer
	colors   bool
	loc      *time.Location
	info     func() domain.JoinInfo
	level    transcript.Level
	lastWait time.Duration
}

func newTerminalView(out io.Writer, colors bool) *terminalView {
	return &terminalView{out: out, colors: colors, loc: time.Local, lastWait: -1}
}

func (v *terminalView) paint(style color.Style, text string) string {
	if !v.colors {
		return text
	}
	return style.Render(text)
}

func (v *terminalView) println(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, text)
}

func (v *terminalView) StateChanged(state client.State) {
	if msg, ok := stateMessages[state]; ok {
		v.println(v.paint(color.New(color.FgCyan, color.OpBold), "*** "+msg))
	}
}

func (v *terminalView) TranscriptUpdated(added []domain.Event, progress transcript.Progress) {
	isFirstUser := false
	if v.info != nil {
		isFirstUser = v.info().IsFirstUser
	}
	for _, evt := range added {
		v.println(v.line(transcript.Render(evt, isFirstUser, transcript.DefaultLabels, v.loc)))
	}

	v.mu.Lock()
	changed := progress.Level != v.level
	v.level = progress.Level
	v.mu.Unlock()
	if changed && progress.Hint != "" {
		v.println(v.paint(progressStyle(progress), fmt.Sprintf("[%3.0f%%] %s", progress.Width/0.9, progress.Hint)))
	}
}

func (v *terminalView) line(entry transcript.Entry) string {
	if entry.Type == domain.SysEvent {
		return v.paint(color.New(color.FgGray), fmt.Sprintf("[%s] %sが退出しました", entry.Clock, entry.Speaker))
	}
	style := color.New(color.FgGreen)
	if entry.From == domain.Other {
		style = color.New(color.FgBlue)
	}
	body := transcript.Highlight(entry.Body,
		func(text string) string { return text },
		func(link string) string { return v.paint(linkStyle, link) })
	return fmt.Sprintf("[%s] %s: %s", entry.Clock, v.paint(style, entry.Speaker), body)
}

func progressStyle(progress transcript.Progress) color.Style {
	switch progress.Color {
	case "green":
		return color.New(color.FgGreen)
	case "yellow":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (v *terminalView) Notice(text string) {
	v.println(v.paint(color.New(color.FgYellow), "! "+text))
}

// Countdown prints the remaining waiting time once per minute, then every
// ten seconds during the last minute.
func (v *terminalView) Countdown(remaining time.Duration) {
	step := time.Minute
	if remaining < time.Minute {
		step = 10 * time.Second
	}
	bucket := remaining.Truncate(step)

	v.mu.Lock()
	if bucket == v.lastWait {
		v.mu.Unlock()
		return
	}
	v.lastWait = bucket
	v.mu.Unlock()
	v.println(v.paint(color.New(color.FgGray), fmt.Sprintf("あと %s 待ちます", remaining.Round(time.Second))))
}
