package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Alvington/ImposterGame/internal/store"
)

type Config struct {
	apiKey    string
	bind      string
	cachePath string
	model     string
	name      string
	port      int
	profile   bool
	verbose   bool
}

func (c *Config) validate() error {
	if c.cachePath == "" {
		return errors.New("cache path must not be empty")
	}
	return nil
}

func (c *Config) validateListen() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("IMPOSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "imposter",
		Short:         "A social deduction party game, playable on one device or across a direct peer-to-peer room.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
	}

	hostCmd := &cobra.Command{
		Use:   "host",
		Short: "Create a room and play as its host.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			if err := cfg.validateListen(); err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg)
		},
	}

	joinCmd := &cobra.Command{
		Use:   "join <code|ws-url>",
		Short: "Join an existing room by code or join URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runJoin(cmd.Context(), cfg, args[0])
		},
	}

	localCmd := &cobra.Command{
		Use:   "local",
		Short: "Pass-and-play on this device.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runLocal(cmd.Context(), cfg)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.apiKey, "api-key", "", "generative API key; fallback words are used when empty (env: IMPOSTER_API_KEY)")
	pfs.StringVar(&cfg.cachePath, "cache", store.DefaultPath(), "path to the name/category cache file (env: IMPOSTER_CACHE)")
	pfs.StringVar(&cfg.model, "model", "gemini-1.5-flash", "generative model for word provisioning (env: IMPOSTER_MODEL)")
	pfs.StringVarP(&cfg.name, "name", "n", "", "your player name (env: IMPOSTER_NAME)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display protocol diagnostics (env: IMPOSTER_VERBOSE)")

	hfs := hostCmd.Flags()
	hfs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind the room listener to (env: IMPOSTER_BIND)")
	hfs.IntVarP(&cfg.port, "port", "p", 8080, "port for the room listener (env: IMPOSTER_PORT)")
	hfs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers on the room listener (env: IMPOSTER_PROFILE)")

	jfs := joinCmd.Flags()
	jfs.StringVar(&cfg.bind, "addr", "localhost:8080", "host address when joining by bare code (env: IMPOSTER_ADDR)")

	for _, fs := range []*pflag.FlagSet{pfs, hfs, jfs} {
		fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
			return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
		})
		fs.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(f.Name, f)
			_ = v.BindEnv(f.Name)
			if !f.Changed && v.IsSet(f.Name) {
				_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})
	}

	cmd.AddCommand(hostCmd, joinCmd, localCmd)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("imposter v{{.Version}}\n")

	return cmd
}
