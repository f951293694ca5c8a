package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scythe504/sketchroom/internal"
)

const (
	ReleaseVersion = "0.1.0"
	EnvPrefix      = "SKETCHROOM"
)

type Config struct {
	Bind          string
	Port          int
	HTTPPort      int
	HeaderLen     int
	MaxBodyLen    int
	ScoreLimit    int
	RoundDuration time.Duration
	WordsFile     string
	DatabaseURL   string
	Bot           bool
	MessageRate   float64
	MessageBurst  int
	WriteTimeout  time.Duration
	Verbose       bool
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port (must be between 0-65535 inclusive): %d", c.HTTPPort)
	}
	if c.HTTPPort == c.Port {
		return errors.New("--port and --http-port must differ")
	}
	if c.HeaderLen < 16 {
		return fmt.Errorf("header length too small: %d", c.HeaderLen)
	}
	if c.MaxBodyLen < 1 {
		return fmt.Errorf("invalid max body length: %d", c.MaxBodyLen)
	}
	if c.ScoreLimit < 1 {
		return fmt.Errorf("invalid score limit: %d", c.ScoreLimit)
	}
	if c.RoundDuration < 2*time.Second {
		return fmt.Errorf("round duration too short: %s", c.RoundDuration)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %s", c.WriteTimeout)
	}
	if c.MessageRate <= 0 || c.MessageBurst < 1 {
		return errors.New("--message-rate and --message-burst must be positive")
	}
	return nil
}

// TCPAddr is where the framed game protocol listens.
func (c *Config) TCPAddr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// HTTPAddr is where the HTTP side listens, or "" when disabled.
func (c *Config) HTTPAddr() string {
	if c.HTTPPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.HTTPPort))
}

// NewCommand builds the root command. Every flag can also be set through a
// SKETCHROOM_ prefixed environment variable; explicit flags win.
func NewCommand(cfg *Config, run func(ctx context.Context, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "sketchroom",
		Short:   "Multiplayer draw-and-guess game server.",
		Args:    cobra.ExactArgs(0),
		Version: ReleaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: SKETCHROOM_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 5050, "port for the game protocol (env: SKETCHROOM_PORT)")
	fs.IntVar(&cfg.HTTPPort, "http-port", 8080, "port for http and websocket clients, 0 disables (env: SKETCHROOM_HTTP_PORT)")
	fs.IntVar(&cfg.HeaderLen, "header-len", internal.DefaultHeaderLen, "fixed frame header length in bytes (env: SKETCHROOM_HEADER_LEN)")
	fs.IntVar(&cfg.MaxBodyLen, "max-body", internal.DefaultMaxBodyLen, "largest accepted frame body in bytes (env: SKETCHROOM_MAX_BODY)")
	fs.IntVar(&cfg.ScoreLimit, "score-limit", internal.DefaultScoreLimit, "points that end a game (env: SKETCHROOM_SCORE_LIMIT)")
	fs.DurationVar(&cfg.RoundDuration, "round-duration", internal.DefaultRoundDuration, "length of one round (env: SKETCHROOM_ROUND_DURATION)")
	fs.StringVar(&cfg.WordsFile, "words-file", "", "csv file with the word list (env: SKETCHROOM_WORDS_FILE)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres url for words and game history (env: SKETCHROOM_DATABASE_URL)")
	fs.BoolVar(&cfg.Bot, "bot", true, "let the bot guess along (env: SKETCHROOM_BOT)")
	fs.Float64Var(&cfg.MessageRate, "message-rate", 30, "frames per second each client may send (env: SKETCHROOM_MESSAGE_RATE)")
	fs.IntVar(&cfg.MessageBurst, "message-burst", 60, "burst of frames allowed above the rate (env: SKETCHROOM_MESSAGE_BURST)")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", internal.DefaultWriteTimeout, "deadline for one outgoing frame (env: SKETCHROOM_WRITE_TIMEOUT)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display debug output (env: SKETCHROOM_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sketchroom v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
