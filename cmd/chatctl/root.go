package main

import (
	"chat-collect/client"
	"log/slog"
	"os"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8993/ChatCollectionServer"

type options struct {
	server        string
	adminUser     string
	adminPassword string
	logLevel      string
	timeout       time.Duration
}

func (o *options) logger() *slog.Logger {
	return logs.GetLoggerFromString(o.logLevel)
}

// adminAPI is an API authenticated for the admin endpoints.
func (o *options) adminAPI() (*client.API, error) {
	api, err := client.NewAPI(o.server, "chatctl", o.timeout, o.logger())
	if err != nil {
		return nil, err
	}
	if o.adminPassword != "" {
		api.SetBasicAuth(o.adminUser, o.adminPassword)
	}
	return api, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "chatctl",
		Short: "Command line client of the chat collection server",
		Example: `
# Chat from the terminal
chatctl chat --server http://localhost:8993/ChatCollectionServer

# List the chatrooms of the server
chatctl rooms --admin-password secret

# Search archived dialogs
chatctl search "こんにちは" --experiment exp-1

# Dump the events stored for a chatroom
chatctl store --db ./data/badger --prefix evt:<chatroom id>
`,
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", envOr("CHAT_SERVER_URL", defaultServer), "Base URL of the server, web context included")
	flags.StringVar(&opts.adminUser, "admin-user", envOr("CHAT_ADMIN_USER", "admin"), "Admin user")
	flags.StringVar(&opts.adminPassword, "admin-password", os.Getenv("CHAT_ADMIN_PASSWORD"), "Admin password")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "Log level")
	flags.DurationVar(&opts.timeout, "timeout", time.Minute, "HTTP timeout, longer than the server poll timeout")

	root.AddCommand(
		newChatCmd(opts),
		newRoomsCmd(opts),
		newSearchCmd(opts),
		newStoreCmd(),
		newHashPasswordCmd(),
	)
	return root
}
