// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naka-gawa/pr-portfolio/internal/usecase"
)

const (
	envFile   = ".env"
	envPrefix = "PORTFOLIO"
)

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"user":    "subject.handle",
	"out":     "snapshot.dir",
	"format":  "snapshot.format",
	"preview": "preview.enabled",
	"history": "history.path",
	"dir":     "snapshot.dir",
}

// Load reads configuration from the environment, an optional .env file and the
// flags in fs (may be nil). Flags set on the command line win over everything else.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, envFile, auth.TokenForHost)
}

func load(fs *pflag.FlagSet, dotenv string, tokenForHost func(string) (string, string)) (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(dotenv); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token, _ = tokenForHost(cfg.GitHub.Host)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("github.host", "github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.graphql_url", "")
	v.SetDefault("github.rest_base_url", "")

	v.SetDefault("subject.handle", "")

	v.SetDefault("fetch.page_size", 100)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.retries", 2)
	v.SetDefault("fetch.rate_limit_sleep", time.Hour)

	v.SetDefault("avatar.template", "https://github.com/"+usecase.OwnerPlaceholder+".png")

	v.SetDefault("snapshot.dir", "src/data")
	v.SetDefault("snapshot.format", "json")
	v.SetDefault("snapshot.timezone", "Asia/Tokyo")
	v.SetDefault("snapshot.time_layout", usecase.DefaultTimeLayout)

	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.path", "public/ogp.png")
	v.SetDefault("preview.title", "GitHub PR Portfolio")
	v.SetDefault("preview.font_paths", []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		`C:\Windows\Fonts\arial.ttf`,
	})
	v.SetDefault("preview.font_url", "")

	v.SetDefault("history.path", "")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"github.host",
		"github.graphql_url",
		"github.rest_base_url",
		"subject.handle",
		"fetch.page_size",
		"fetch.timeout",
		"fetch.retries",
		"fetch.rate_limit_sleep",
		"avatar.template",
		"snapshot.dir",
		"snapshot.format",
		"snapshot.timezone",
		"snapshot.time_layout",
		"preview.enabled",
		"preview.path",
		"preview.title",
		"preview.font_paths",
		"preview.font_url",
		"history.path",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("github.token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
