package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// newHTTPServer builds the server of the chat API. Pending long polls are
// released as soon as Shutdown starts.
func newHTTPServer(address string, handler http.Handler, pollTimeout time.Duration) *http.Server {
	polls, releasePolls := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Long polls stay open up to the poll timeout
		WriteTimeout: pollTimeout + 10*time.Second,
		BaseContext:  func(net.Listener) context.Context { return polls },
	}
	server.RegisterOnShutdown(releasePolls)
	return server
}

// shutdown stops the HTTP server before the workers, so that chatrooms
// released by the last requests still reach the archive worker.
func shutdown(logger *slog.Logger, server *http.Server, stopWorkers context.CancelFunc, stopped <-chan struct{}, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", err)
	}
	stopWorkers()
	<-stopped
}
