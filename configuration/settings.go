package configuration

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ADMINREPORT"

// Settings locates the collaborators the reports are built from. Everything
// comes from ADMINREPORT_* environment variables.
type Settings struct {
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	RelayURL       string        `envconfig:"RELAY_URL"`
	RelayRetries   uint64        `envconfig:"RELAY_RETRIES" default:"3"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	ForumBaseURL  string `envconfig:"FORUM_BASE_URL"`
	ForumCookie   string `envconfig:"FORUM_COOKIE"`
	DashboardURL  string `envconfig:"DASHBOARD_URL"`
	AdminListURL  string `envconfig:"ADMIN_LIST_URL"`
	AdminInfoURL  string `envconfig:"ADMIN_INFO_URL"`
	InactivesURL  string `envconfig:"INACTIVES_URL"`
	DatabasePath  string `envconfig:"DATABASE"`
	ListenAddress string `envconfig:"LISTEN_ADDRESS" default:":8085"`
}

func LoadSettings() (Settings, error) {
	var s Settings
	err := envconfig.Process(EnvPrefix, &s)
	return s, err
}
