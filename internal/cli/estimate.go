package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/estimate"
	"github.com/joelkehle/claimestimate/internal/report"
)

var errNoEvent = errors.New("no current incident; run 'claimestimate event set' first")

var stageMessages = map[string]string{
	"build":  "Preparing request...",
	"send":   "Waiting for the AI model...",
	"repair": "Checking the reply...",
}

// reportFiles are the optional files an estimate is written to.
type reportFiles struct {
	pdf      string
	html     string
	markdown string
}

func (f *reportFiles) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "Write the report as PDF to this path (needs Chrome or Chromium)")
	cmd.Flags().StringVar(&f.html, "html", "", "Write the report as HTML to this path")
	cmd.Flags().StringVar(&f.markdown, "markdown", "", "Write the report as Markdown to this path")
}

func (a *app) estimateCmd() *cobra.Command {
	var files reportFiles
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the claimable amounts for the current incident",
		Long: `Send the policy book and the current incident to the AI model and print an
itemized estimate. The estimate is always printed: when the model cannot be
reached or its reply cannot be read, a fallback result asks you to check the
input and the reason is shown as a warning.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, ps, err := a.policies(ctx)
			if err != nil {
				return err
			}
			event, ok, err := a.repo.LoadCurrentEvent(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errNoEvent
			}
			client, err := a.newClient(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}

			prog := a.startProgress("Preparing request...")
			orch := estimate.NewOrchestrator(client,
				estimate.WithLogger(a.log),
				estimate.WithCache(a.repo),
				estimate.WithProgress(func(stage, _ string) {
					if msg, ok := stageMessages[stage]; ok {
						prog.update(msg)
					}
				}),
			)
			out, err := orch.Estimate(ctx, estimate.EstimateRequest{
				Policies: ps,
				Event:    event,
				Language: a.lang(),
			})
			prog.stop()
			if err != nil {
				return err
			}

			r := report.Report{
				Result:      out.Result,
				Event:       event,
				Policies:    ps,
				Language:    a.lang(),
				Degraded:    out.State == estimate.StateDegraded,
				GeneratedAt: time.Now(),
			}
			if err := a.writeReports(ctx, files, r); err != nil {
				return err
			}

			if ok, err := encode(a.stdout, a.output, newEstimateView(out)); ok {
				return err
			}
			a.warnOutcome(out)
			displayEstimate(a.stdout, out.Result, ps, a.lang())
			return nil
		}),
	}
	files.register(cmd)
	cmd.AddCommand(a.estimateLastCmd())
	return cmd
}

func (a *app) estimateLastCmd() *cobra.Command {
	var files reportFiles
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the last estimate for the current incident again",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cached, ok, err := a.repo.LoadLastEstimate(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no estimate yet; run 'claimestimate estimate' first")
			}
			event, _, err := a.repo.LoadCurrentEvent(ctx)
			if err != nil {
				return err
			}
			var ps []claims.Policy
			if id, ok, err := a.repo.LoadCurrentUser(ctx); err == nil && ok {
				ps, _, _ = a.repo.LoadPolicies(ctx, id.ID)
			}

			lang := cached.Language
			if lang == "" {
				lang = a.lang()
			}
			r := report.Report{
				Result:      cached.Result,
				Event:       event,
				Policies:    ps,
				Language:    lang,
				Degraded:    cached.Degraded,
				GeneratedAt: cached.CreatedAt,
			}
			if err := a.writeReports(ctx, files, r); err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, cached); ok {
				return err
			}
			if cached.Degraded {
				printWarning(a.stderr, "This estimate is a fallback result.")
			}
			displayEstimate(a.stdout, cached.Result, ps, lang)
			return nil
		}),
	}
	files.register(cmd)
	return cmd
}

func (a *app) warnOutcome(out estimate.Outcome) {
	if out.State == estimate.StateDegraded {
		if out.Cause != nil {
			printWarning(a.stderr, fmt.Sprintf("Estimate unavailable: %v", out.Cause))
			var cerr *claims.Error
			switch {
			case errors.Is(out.Cause, claims.ErrMissingCredential):
				printWarning(a.stderr, "Set ANTHROPIC_API_KEY or GEMINI_API_KEY for the configured provider.")
			case errors.As(out.Cause, &cerr) && cerr.Transient():
				printWarning(a.stderr, "This is usually temporary; try again in a moment.")
			}
		} else {
			printWarning(a.stderr, "The AI reply could not be read; showing a fallback result.")
		}
	}
	if !out.Reconciliation.Consistent {
		printWarning(a.stderr, fmt.Sprintf("Reported total %s differs from the item sum %s.",
			report.FormatAmount(out.Result.TotalEstimatedAmount),
			report.FormatAmount(out.Reconciliation.ItemSum.InexactFloat64())))
	}
}

func (a *app) writeReports(ctx context.Context, files reportFiles, r report.Report) error {
	if files.markdown != "" {
		if err := os.WriteFile(files.markdown, []byte(r.Markdown()), 0o644); err != nil {
			return err
		}
		printSuccess(a.stderr, "Wrote "+files.markdown)
	}
	if files.html != "" {
		doc, err := r.HTML()
		if err != nil {
			return err
		}
		if err := os.WriteFile(files.html, []byte(doc), 0o644); err != nil {
			return err
		}
		printSuccess(a.stderr, "Wrote "+files.html)
	}
	if files.pdf != "" {
		prog := a.startProgress("Rendering PDF...")
		pdf, err := a.newRenderer(a.cfg.Report.ChromePath).Render(ctx, r)
		prog.stop()
		if err != nil {
			a.log.Warn("pdf rendering failed", zap.Error(err))
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		if err := os.WriteFile(files.pdf, pdf, 0o644); err != nil {
			return err
		}
		printSuccess(a.stderr, "Wrote "+files.pdf)
	}
	return nil
}
