package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PARTYHOST"

type Config struct {
	allowedOrigins []string
	bind           string
	geminiKey      string
	geminiModel    string
	oracleTimeout  time.Duration
	playerTimeout  time.Duration
	port           int
	prefix         string
	profile        bool
	questionTime   time.Duration
	quizQuestions  int
	rateBurst      int
	rateLimit      float64
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.playerTimeout <= 0 {
		return fmt.Errorf("invalid player timeout (must be positive): %s", c.playerTimeout)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if c.rateLimit <= 0 || c.rateBurst < 1 {
		return fmt.Errorf("invalid rate limit (must be positive, with a burst of at least 1): %v/%d", c.rateLimit, c.rateBurst)
	}
	if c.quizQuestions < 1 || c.quizQuestions > 50 {
		return fmt.Errorf("invalid question count (must be between 1-50 inclusive): %d", c.quizQuestions)
	}
	if c.questionTime <= 0 {
		return fmt.Errorf("invalid question time (must be positive): %s", c.questionTime)
	}
	if c.oracleTimeout <= 0 {
		return fmt.Errorf("invalid oracle timeout (must be positive): %s", c.oracleTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadEnvFile reads PARTYHOST_ENV_FILE (default .env) into the process
// environment. A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv(envPrefix + "_ENV_FILE")
	if path == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "partyhost",
		Short:         "Real-time session host for room-based party games.",
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

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to open websockets, empty allows all (env: PARTYHOST_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PARTYHOST_BIND)")
	fs.StringVar(&cfg.geminiKey, "gemini-api-key", "", "api key for generated quiz questions, empty uses built-in questions (env: PARTYHOST_GEMINI_API_KEY)")
	fs.StringVar(&cfg.geminiModel, "gemini-model", defaultGeminiModel, "model used to generate quiz questions (env: PARTYHOST_GEMINI_MODEL)")
	fs.DurationVar(&cfg.oracleTimeout, "oracle-timeout", 30*time.Second, "time to wait for generated questions before falling back (env: PARTYHOST_ORACLE_TIMEOUT)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", time.Minute, "time before unresponsive connections are dropped (env: PARTYHOST_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: PARTYHOST_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PARTYHOST_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: PARTYHOST_PROFILE)")
	fs.DurationVar(&cfg.questionTime, "question-time", 20*time.Second, "time limit shown for each quiz question (env: PARTYHOST_QUESTION_TIME)")
	fs.IntVar(&cfg.quizQuestions, "quiz-questions", 10, "number of questions per quiz (env: PARTYHOST_QUIZ_QUESTIONS)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 20, "events a connection may send in a burst (env: PARTYHOST_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 10, "sustained events per second allowed per connection (env: PARTYHOST_RATE_LIMIT)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are closed, 0 disables (env: PARTYHOST_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: PARTYHOST_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: PARTYHOST_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PARTYHOST_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PARTYHOST_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("partyhost v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
