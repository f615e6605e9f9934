package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ServerURL includes the web context, e.g. http://localhost:8993/ChatCollectionServer
	ServerURL     string `envconfig:"CHAT_SERVER_URL"`
	AdminUser     string `envconfig:"CHAT_ADMIN_USER" default:"admin"`
	AdminPassword string `envconfig:"CHAT_ADMIN_PASSWORD"`
	// E2E_DEBUG_JSON dumps the admin documents fetched during the scenarios
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
