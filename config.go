/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	storeMemory = "memory"
	storeFile   = "file"
	storeSQLite = "sqlite"
)

type Config struct {
	bind            string
	data            string
	discussionTime  time.Duration
	envFile         string
	maxCategoryName int
	port            int
	prefix          string
	profile         bool
	seed            int64
	sessionTimeout  time.Duration
	store           string
	tlsCert         string
	tlsKey          string
	verbose         bool
	version         bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.store {
	case storeMemory:
	case storeFile, storeSQLite:
		if strings.TrimSpace(c.data) == "" {
			return fmt.Errorf("--data is required when --store=%s", c.store)
		}
	default:
		return fmt.Errorf("invalid store (must be one of %s, %s, %s): %q", storeMemory, storeFile, storeSQLite, c.store)
	}
	if c.discussionTime < 0 {
		return fmt.Errorf("invalid discussion time (must not be negative): %s", c.discussionTime)
	}
	if c.maxCategoryName < 1 {
		return fmt.Errorf("invalid max category name length (must be positive): %d", c.maxCategoryName)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadEnvFile reads KEY=value pairs into the environment before viper
// looks at it. A missing default file is fine; a missing explicit one is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if explicit {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDIMPOSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordimposter",
		Short:         "A pass-the-phone word imposter party game, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDIMPOSTER_BIND)")
	fs.StringVarP(&cfg.data, "data", "d", "", "path to the roster and custom category store (env: WORDIMPOSTER_DATA)")
	fs.DurationVar(&cfg.discussionTime, "discussion-time", 3*time.Minute, "length of the discussion timer, 0 to disable (env: WORDIMPOSTER_DISCUSSION_TIME)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment (env: WORDIMPOSTER_ENV_FILE)")
	fs.IntVar(&cfg.maxCategoryName, "max-category-name", 30, "maximum length of custom category names (env: WORDIMPOSTER_MAX_CATEGORY_NAME)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: WORDIMPOSTER_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WORDIMPOSTER_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WORDIMPOSTER_PROFILE)")
	fs.Int64Var(&cfg.seed, "seed", 0, "seed for role and word draws, 0 for a random seed (env: WORDIMPOSTER_SEED)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: WORDIMPOSTER_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.store, "store", storeMemory, "where saved players and custom categories live: memory, file or sqlite (env: WORDIMPOSTER_STORE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WORDIMPOSTER_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WORDIMPOSTER_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WORDIMPOSTER_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WORDIMPOSTER_VERSION)")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		envFlag := fs.Lookup("env-file")
		_ = v.BindEnv(envFlag.Name)
		if !envFlag.Changed && v.IsSet(envFlag.Name) {
			_ = fs.Set(envFlag.Name, v.GetString(envFlag.Name))
		}
		if err := loadEnvFile(cfg.envFile, envFlag.Changed || v.IsSet(envFlag.Name)); err != nil {
			return err
		}

		fs.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(f.Name, f)
			_ = v.BindEnv(f.Name)
			if !f.Changed && v.IsSet(f.Name) {
				_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})

		return nil
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordimposter v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
