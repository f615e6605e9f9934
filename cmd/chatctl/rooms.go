package main

import (
	"chat-collect/domain"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type chatrooms struct {
	ExperimentID string                   `json:"experimentId"`
	Active       []domain.ChatroomSummary `json:"active"`
	Released     []domain.ChatroomSummary `json:"released"`
}

func newRoomsCmd(opts *options) *cobra.Command {
	var released bool
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List the active chatrooms, and the released ones with --released",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := opts.adminAPI()
			if err != nil {
				return err
			}
			var rooms chatrooms
			if err := api.Get(cmd.Context(), "admin/chatrooms", nil, &rooms); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Experiment %s: %d active, %d released\n", rooms.ExperimentID, len(rooms.Active), len(rooms.Released))
			summaries := rooms.Active
			if released {
				summaries = rooms.Released
			}
			renderRooms(out, summaries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&released, "released", false, "List the released chatrooms")
	return cmd
}

func renderRooms(out io.Writer, summaries []domain.ChatroomSummary) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Users", "Events", "Messages", "Created", "Modified"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, s := range summaries {
		table.Append([]string{
			s.ID,
			strings.Join(s.Users, ", "),
			strconv.Itoa(s.Events),
			strconv.Itoa(s.Messages),
			s.Created.Local().Format(time.DateTime),
			s.Modified.Local().Format(time.DateTime),
		})
	}
	table.Render()
}
