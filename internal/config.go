package internal

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

type Config struct {
	LogLevel   string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	Host       string `env:"HOST,default=0.0.0.0"`
	Port       int    `env:"PORT,default=8993" validate:"min=1,max=65535"`
	WebContext string `env:"WEB_CONTEXT,default=ChatCollectionServer"`

	ExperimentID    string        `env:"EXPERIMENT_ID,required=true" validate:"required,max=64"`
	MsgCountLow     int           `env:"MSG_COUNT_LOW,default=10" validate:"min=1"`
	MsgCountHigh    int           `env:"MSG_COUNT_HIGH,default=20" validate:"gtefield=MsgCountLow"`
	PollInterval    time.Duration `env:"POLL_INTERVAL,default=1s" validate:"gt=0"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT,default=30s" validate:"gt=0"`
	DelayForPartner time.Duration `env:"DELAY_FOR_PARTNER,default=5m" validate:"gte=0"`
	UserTimeout     time.Duration `env:"USER_TIMEOUT,default=2m" validate:"gtfield=PollTimeout"`
	ReapInterval    time.Duration `env:"REAP_INTERVAL,default=10s" validate:"gt=0"`
	ReleasedLimit   int           `env:"RELEASED_LIMIT,default=200" validate:"min=0"`
	MatchAttributes []string      `env:"MATCH_ATTRIBUTES"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH"`
	DialogsDir     string `env:"DIALOGS_DIR,default=dialogs" validate:"required"`
	ArchiveBuffer  int    `env:"ARCHIVE_BUFFER,default=64" validate:"min=1"`
	Timezone       string `env:"TIMEZONE,default=Asia/Tokyo"`

	SessionSecret     string        `env:"SESSION_SECRET,required=true" validate:"min=16"`
	SessionDuration   time.Duration `env:"SESSION_DURATION,default=24h" validate:"gt=0"`
	CookieSecure      bool          `env:"COOKIE_SECURE,default=false"`
	AdminUser         string        `env:"ADMIN_USER,default=admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`

	CensoredWordsFile string `env:"CENSORED_WORDS_FILE"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`

	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=1m" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
}

// Location loads the timezone of the admin pages and of the dialog files.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
