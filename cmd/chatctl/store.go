package main

import (
	"chat-collect/internal"
	"fmt"
	"io"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStoreCmd() *cobra.Command {
	var dbPath, prefix string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Dump the keys of the server store, read-only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(dbPath)
			if err != nil {
				return fmt.Errorf("error while opening Badger: %w", err)
			}
			defer db.Close()
			return dumpStore(cmd.OutOrStdout(), db, prefix)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "data/badger", "Path to badger DB")
	cmd.Flags().StringVar(&prefix, "prefix", "room:", "Prefix to scan, evt:<chatroom id> for the events of a chatroom")
	return cmd
}

func dumpStore(out io.Writer, db *badger.DB, prefix string) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Namespace", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				row := internal.DefaultMapper(string(item.Key()), v)
				table.Append([]string{row.Key, row.Type, row.Timestamp, row.EntityID, row.Namespace, row.Detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

// openDB opens the store read-only, next to a running server.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		return nil, fmt.Errorf("%w: stop the server so that the store can be repaired", err)
	}
	return db, err
}
