package main

import (
	"chat-collect/archive"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newSearchCmd(opts *options) *cobra.Command {
	var experiment string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search the archived dialogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.adminAPI()
			if err != nil {
				return err
			}
			query := url.Values{"q": {args[0]}, "limit": {strconv.Itoa(limit)}}
			if experiment != "" {
				query.Set("experiment", experiment)
			}
			var hits []archive.Hit
			if err := api.Get(cmd.Context(), "admin/search", query, &hits); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No dialog found")
				return nil
			}
			for _, hit := range hits {
				fmt.Fprintf(out, "%s  %s  %s  %.2f\n    %s\n",
					hit.ChatroomID, hit.ExperimentID, hit.Lang, hit.Score, hit.Excerpt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&experiment, "experiment", "", "Only dialogs of this experiment")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of dialogs")
	return cmd
}
