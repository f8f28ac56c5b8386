package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/zvonler/adminreport/database"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/utils"
)

const ConfigName = "adminreport"

func OpenExistingDatabase() (adb *database.ArchiveDB, err error) {
	dbPath := viper.GetString("database")

	var exists bool
	if exists, err = utils.PathExists(dbPath); err == nil {
		if exists {
			adb, err = database.OpenArchiveDB(dbPath)
		} else {
			err = fmt.Errorf("Database %q does not exist", dbPath)
		}
	}
	return
}

// OpenArchive opens or creates the archive named by the database setting. An
// empty setting disables archiving and returns nil.
func OpenArchive() (*database.ArchiveDB, error) {
	dbPath := viper.GetString("database")
	if dbPath == "" {
		return nil, nil
	}
	return database.OpenArchiveDB(dbPath)
}

func DefaultForumConfig() model.ForumConfig {
	cfg := model.ForumConfig{
		ServerTitle:         "",
		ShowRewards:         false,
		RewardReportsStep:   100,
		RewardAmountPerStep: 0,
		DailyNormHours:      3,
	}
	cfg.Normalize()
	return cfg
}

// ExampleForumConfig is a minimal configuration with one group, used to show
// the expected file layout.
func ExampleForumConfig() model.ForumConfig {
	cfg := DefaultForumConfig()
	cfg.ServerTitle = "Red"
	cfg.Groups = []model.ForumGroup{{
		Key:    "complaints",
		Title:  "Жалобы",
		Forums: []model.Forum{{ID: 12, Title: "Жалобы на игроков"}},
	}}
	cfg.Normalize()
	return cfg
}

// ForumsHint explains how to configure forums when cfg has none, and is empty
// otherwise. Without forums every forum report fails with ErrConfigUnavailable.
func ForumsHint(cfg model.ForumConfig) string {
	if len(cfg.Forums) > 0 {
		return ""
	}
	example, err := yaml.Marshal(ExampleForumConfig())
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("# No forums configured: forum reports are unavailable until groups are\n")
	fmt.Fprintf(&b, "# added to %s.yaml (or the file given with --config), for example:\n", ConfigName)
	for _, line := range strings.Split(strings.TrimRight(string(example), "\n"), "\n") {
		b.WriteString("#   " + line + "\n")
	}
	return b.String()
}

// LoadForumConfig reads the forum configuration from path, or from
// adminreport.yaml in the working directory or ~/.adminreport when path is
// empty. Finding no file at all yields the defaults. Any other failure
// returns the defaults with an error wrapping ErrConfigUnavailable.
func LoadForumConfig(path string) (model.ForumConfig, error) {
	cfg := DefaultForumConfig()

	v := viper.New()
	v.SetDefault("server_title", cfg.ServerTitle)
	v.SetDefault("show_rewards", cfg.ShowRewards)
	v.SetDefault("reward_reports_step", cfg.RewardReportsStep)
	v.SetDefault("reward_amount_per_step", cfg.RewardAmountPerStep)
	v.SetDefault("daily_norm_hours", cfg.DailyNormHours)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.adminreport")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: %v", model.ErrConfigUnavailable, err)
	}

	var loaded model.ForumConfig
	if err := v.Unmarshal(&loaded); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", model.ErrConfigUnavailable, v.ConfigFileUsed(), err)
	}
	if loaded.DailyNormHours < 0 {
		loaded.DailyNormHours = cfg.DailyNormHours
	}
	loaded.Normalize()
	return loaded, nil
}
