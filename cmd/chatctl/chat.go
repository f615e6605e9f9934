package main

import (
	"bufio"
	"chat-collect/client"
	"chat-collect/errors"
	"chat-collect/transcript"
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const stopCommand = "/stop"

func newChatCmd(opts *options) *cobra.Command {
	var colors bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join a dialog from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := opts.logger()
			api, err := client.NewAPI(opts.server, uuid.NewString()[:8], opts.timeout, log)
			if err != nil {
				return err
			}
			view := newTerminalView(cmd.OutOrStdout(), colors)
			session := client.NewSession(api, view, log)
			view.info = session.Info
			return chat(cmd.Context(), session, view, cmd.InOrStdin())
		},
	}
	cmd.Flags().BoolVar(&colors, "colors", true, "Colorize the output")
	return cmd
}

// chat runs the session and sends every line read from in, until the dialog
// ends or the input is closed.
func chat(ctx context.Context, session *client.Session, view *terminalView, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	confirm := func() bool {
		view.println(transcript.ConfirmStop + " [y/N]")
		select {
		case answer, ok := <-lines:
			return ok && strings.EqualFold(strings.TrimSpace(answer), "y")
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case err := <-done:
			if stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok {
				// The first request may only warn that the dialog is too short
				for range 2 {
					stopped, err := session.Stop(ctx, nil)
					if err != nil {
						return err
					}
					if stopped {
						break
					}
				}
				return <-done
			}
			if strings.TrimSpace(line) == stopCommand {
				if _, err := session.Stop(ctx, confirm); err != nil {
					return err
				}
				continue
			}
			err := session.Send(ctx, line)
			switch {
			case stderrors.Is(err, errors.ErrAwaitingReply):
			case stderrors.Is(err, errors.ErrDialogOver):
				view.Notice(stateMessages[client.StateOver])
			case err != nil:
				return err
			}
		}
	}
}
