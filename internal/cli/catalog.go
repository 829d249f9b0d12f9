package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/config"
)

var catalogs = map[string][]string{
	"companies":  claims.Companies,
	"categories": claims.PlanCategories,
	"incidents":  claims.IncidentTypes,
	"treatments": claims.TreatmentMethods,
}

func catalogNames() []string {
	names := make([]string, 0, len(catalogs))
	for n := range catalogs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "catalog NAME",
		Short:     "List the entries accepted by number in other commands",
		Long:      "List a catalog: " + strings.Join(catalogNames(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: catalogNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, ok := catalogs[strings.ToLower(args[0])]
			if !ok {
				return fmt.Errorf("unknown catalog %q (want one of %s)", args[0], strings.Join(catalogNames(), ", "))
			}
			if ok, err := encode(a.stdout, a.output, entries); ok {
				return err
			}
			for i, e := range entries {
				fmt.Fprintf(a.stdout, "%3d  %s\n", i+1, e)
			}
			return nil
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with credentials redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			redacted := *cfg
			redacted.Oracle.AnthropicAPIKey = redact(cfg.Oracle.AnthropicAPIKey)
			redacted.Oracle.GeminiAPIKey = redact(cfg.Oracle.GeminiAPIKey)
			redacted.Store.RedisPassword = redact(cfg.Store.RedisPassword)
			format := a.output
			if format == formatHuman {
				format = formatYAML
			}
			_, err = encode(a.stdout, format, redacted)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && fileExists(a.configPath) {
				return fmt.Errorf("%s already exists; use --force to overwrite", a.configPath)
			}
			if err := config.DefaultConfig().Save(a.configPath); err != nil {
				return err
			}
			printSuccess(a.stdout, "Wrote "+a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
