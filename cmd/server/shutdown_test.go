package main

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestShutdown_ReleasesPollsThenStopsWorkers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	var mu sync.Mutex
	var order []string
	record := func(step string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, step)
	}

	// Given a long poll pending on the server
	polling := make(chan struct{})
	server := newHTTPServer("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(polling)
		<-r.Context().Done()
		record("poll released")
	}), time.Minute)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	go func() { _ = server.Serve(listener) }()
	go func() {
		resp, err := http.Get("http://" + listener.Addr().String() + "/chatroom")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	select {
	case <-polling:
	case <-time.After(time.Second):
		req.Fail("poll never reached the server")
	}

	// When the server shuts down
	stopped := make(chan struct{})
	stopWorkers := func() {
		record("workers stopped")
		close(stopped)
	}
	start := time.Now()
	shutdown(log, server, stopWorkers, stopped, 10*time.Second)

	// Then the poll does not hold the shutdown and the workers stop last
	req.Less(time.Since(start), 2*time.Second)
	mu.Lock()
	defer mu.Unlock()
	req.Equal([]string{"poll released", "workers stopped"}, order)
}
