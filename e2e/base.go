package e2e

import (
	"chat-collect/client"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite runs scenarios against a running chat server. Every test is
// skipped when CHAT_SERVER_URL is not set.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" {
		s.T().Skip("CHAT_SERVER_URL not set")
	}
}

// Step prints a colorized header and runs fn with a bounded context.
func (s *BaseHTTPSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	fn(ctx)
}

// Participant is a fresh browser: its own tab id and its own session cookie.
func (s *BaseHTTPSuite) Participant() *client.API {
	api, err := client.NewAPI(s.Config.ServerURL, uuid.NewString()[:8], time.Minute, logs.GetLoggerFromLevel(slog.LevelWarn))
	s.Require().NoError(err)
	return api
}

// Admin fetches an admin document.
func (s *BaseHTTPSuite) Admin(ctx context.Context, path string, query url.Values, out any) {
	api := s.Participant()
	if s.Config.AdminPassword != "" {
		api.SetBasicAuth(s.Config.AdminUser, s.Config.AdminPassword)
	}
	s.Require().NoError(api.Get(ctx, path, query, out), "Failed to fetch "+path)
	if s.Config.DebugJSON {
		body, _ := json.MarshalIndent(out, "", "  ")
		s.T().Logf("%s:\n%s", path, body)
	}
}
