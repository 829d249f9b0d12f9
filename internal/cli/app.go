// Package cli is the claimestimate command-line front end. Every command
// loads configuration, opens the configured store and closes it again before
// returning.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/config"
	"github.com/joelkehle/claimestimate/internal/logging"
	"github.com/joelkehle/claimestimate/internal/oracle"
	"github.com/joelkehle/claimestimate/internal/report"
	"github.com/joelkehle/claimestimate/internal/storage"
	"github.com/joelkehle/claimestimate/internal/telemetry"
)

type ClientFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (oracle.Client, error)

type RendererFactory func(chromePath string) report.PDFRenderer

// flagOverrides are root flags that win over the config file and env.
type flagOverrides struct {
	lang      string
	provider  string
	model     string
	store     string
	storePath string
	logLevel  string
}

type app struct {
	version    string
	configPath string
	output     string
	flags      flagOverrides

	stdout io.Writer
	stderr io.Writer

	newClient   ClientFactory
	newRenderer RendererFactory

	cfg      *config.Config
	log      *zap.Logger
	repo     *storage.Repository
	shutdown telemetry.ShutdownFunc
}

func newApp(version string) *app {
	return &app{
		version:     version,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		newClient:   NewOracleClient,
		newRenderer: func(chromePath string) report.PDFRenderer { return report.NewChromiumPDFRenderer(chromePath) },
	}
}

// NewRootCmd builds the claimestimate command tree.
func NewRootCmd(version string) *cobra.Command {
	return newApp(version).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "claimestimate",
		Short: "Estimate insurance claims for a medical incident",
		Long: `claimestimate keeps a local book of insurance policies and riders, records
the current medical incident with its evidence, and asks an AI model for an
itemized estimate of what can be claimed.

Examples:
  claimestimate login --email me@example.com
  claimestimate policy add --company 1 --plan "Medical Plus" --category 2 --coverage 3000
  claimestimate event set --incident-type 2 --diagnosis "Fractured wrist" --days 3 --expense 42000
  claimestimate estimate --pdf claim.pdf`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath(), "Path to the config file")
	pf.StringVarP(&a.output, "output", "o", "human", "Output format (human, json, yaml)")
	pf.StringVar(&a.flags.lang, "lang", "", "Output language (en-US, zh-TW)")
	pf.StringVar(&a.flags.provider, "provider", "", "AI provider (anthropic, gemini)")
	pf.StringVar(&a.flags.model, "model", "", "Model name for the provider")
	pf.StringVar(&a.flags.store, "store", "", "Store backend (memory, file, sqlite, postgres, redis)")
	pf.StringVar(&a.flags.storePath, "store-path", "", "File for the file and sqlite store backends")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.userCmd(),
		a.policyCmd(),
		a.riderCmd(),
		a.eventCmd(),
		a.estimateCmd(),
		a.catalogCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "claimestimate version %s\n", a.version)
		},
	}
}

// runE wraps a command body with setup and teardown of config, logging,
// tracing and the store.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(cmd.Context()); err != nil {
			return err
		}
		defer a.teardown()
		return fn(cmd, args)
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.Language, a.flags.lang)
	set(&cfg.Oracle.Provider, a.flags.provider)
	set(&cfg.Oracle.Model, a.flags.model)
	set(&cfg.Store.Backend, a.flags.store)
	set(&cfg.Store.Path, a.flags.storePath)
	set(&cfg.Logging.Level, a.flags.logLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) setup(ctx context.Context) error {
	switch a.output {
	case formatHuman, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want human, json or yaml)", a.output)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.log = log

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName, a.version)
	if err != nil {
		a.log.Warn("tracing disabled", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}
	a.shutdown = shutdown

	store, err := storage.Open(ctx, cfg.StoreOptions(), log)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	a.repo = storage.NewRepository(store, log)
	a.log.Debug("store opened", zap.String("backend", cfg.Store.Backend))
	return nil
}

func (a *app) teardown() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("closing store", zap.Error(err))
		}
		a.repo = nil
	}
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			a.log.Warn("flushing traces", zap.Error(err))
		}
		a.shutdown = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) lang() claims.Language { return a.cfg.Lang() }

// currentUser returns the logged-in identity or an error telling the user to
// log in.
func (a *app) currentUser(ctx context.Context) (claims.Identity, error) {
	id, ok, err := a.repo.LoadCurrentUser(ctx)
	if err != nil {
		return claims.Identity{}, err
	}
	if !ok {
		return claims.Identity{}, fmt.Errorf("not logged in; run 'claimestimate login --email <address>' first")
	}
	return id, nil
}

func (a *app) policies(ctx context.Context) (claims.Identity, []claims.Policy, error) {
	id, err := a.currentUser(ctx)
	if err != nil {
		return claims.Identity{}, nil, err
	}
	ps, _, err := a.repo.LoadPolicies(ctx, id.ID)
	if err != nil {
		return claims.Identity{}, nil, err
	}
	return id, ps, nil
}
