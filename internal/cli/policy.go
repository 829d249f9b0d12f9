package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/estimate"
	"github.com/joelkehle/claimestimate/internal/evidence"
	"github.com/joelkehle/claimestimate/internal/report"
)

// resolvePolicy accepts a full id, a 1-based position in the list, or a
// unique id prefix.
func resolvePolicy(ps []claims.Policy, ref string) (claims.Policy, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := claims.FindPolicy(ps, ref); ok {
		return p, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(ps) {
		return ps[n-1], nil
	}
	var match []claims.Policy
	for _, p := range ps {
		if ref != "" && strings.HasPrefix(p.ID, ref) {
			match = append(match, p)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return claims.Policy{}, fmt.Errorf("no policy matches %q", ref)
	default:
		return claims.Policy{}, fmt.Errorf("%q matches %d policies; use a longer id", ref, len(match))
	}
}

func (a *app) policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "policy",
		Aliases: []string{"policies"},
		Short:   "Manage the policy book",
	}
	cmd.AddCommand(a.policyAddCmd(), a.policyListCmd(), a.policyShowCmd(), a.policyRemoveCmd(), a.policyScanCmd())
	return cmd
}

func (a *app) policyAddCmd() *cobra.Command {
	var company, plan, category string
	var coverage float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a policy",
		Long: `Add a policy. --company and --category take either free text or the number
of an entry from 'claimestimate catalog companies|categories'.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ps, err := a.policies(ctx)
			if err != nil {
				return err
			}
			p := claims.NewPolicy(
				claims.ResolveTag(claims.Companies, company, ""),
				plan,
				claims.ResolveTag(claims.PlanCategories, category, ""),
				coverage,
			)
			ps, err = claims.AddPolicy(ps, p)
			if err != nil {
				return err
			}
			if err := a.repo.SavePolicies(ctx, id.ID, ps); err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, p); ok {
				return err
			}
			printSuccess(a.stdout, fmt.Sprintf("Added policy %s (%s)", p.MainPlanName, p.ID))
			return nil
		}),
	}
	cmd.Flags().StringVar(&company, "company", "", "Insurer name or catalog number")
	cmd.Flags().StringVar(&plan, "plan", "", "Main plan name (required)")
	cmd.Flags().StringVar(&category, "category", "", "Plan category or catalog number")
	cmd.Flags().Float64Var(&coverage, "coverage", 0, "Main coverage amount")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func (a *app) policyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List policies and their riders",
		Args:    cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			_, ps, err := a.policies(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, ps); ok {
				return err
			}
			displayPolicies(a.stdout, ps)
			return nil
		}),
	}
}

func (a *app) policyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show POLICY",
		Short: "Show one policy",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			_, ps, err := a.policies(cmd.Context())
			if err != nil {
				return err
			}
			p, err := resolvePolicy(ps, args[0])
			if err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, p); ok {
				return err
			}
			displayPolicies(a.stdout, []claims.Policy{p})
			return nil
		}),
	}
}

func (a *app) policyRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove POLICY",
		Aliases: []string{"rm"},
		Short:   "Remove a policy together with its riders",
		Args:    cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ps, err := a.policies(ctx)
			if err != nil {
				return err
			}
			p, err := resolvePolicy(ps, args[0])
			if err != nil {
				return err
			}
			ps, _ = claims.RemovePolicy(ps, p.ID)
			if err := a.repo.SavePolicies(ctx, id.ID, ps); err != nil {
				return err
			}
			printSuccess(a.stdout, fmt.Sprintf("Removed policy %s", p.MainPlanName))
			return nil
		}),
	}
}

func (a *app) policyScanCmd() *cobra.Command {
	var save bool
	var category string
	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "Read company, plan and coverage from a policy document",
		Long: `Send a photo or PDF of a policy document to the AI model and print the
company, plan name and main coverage it finds. With --save the result is
added to the policy book.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ps, err := a.policies(ctx)
			if err != nil {
				return err
			}
			doc, err := evidence.EncodeFile(args[0])
			if err != nil {
				return err
			}
			client, err := a.newClient(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}

			prog := a.startProgress("Reading policy document...")
			draft, err := estimate.NewScanner(client, a.log).Scan(ctx, doc, a.lang())
			prog.stop()
			if err != nil {
				return err
			}

			if !save {
				if ok, err := encode(a.stdout, a.output, draft); ok {
					return err
				}
				fmt.Fprintf(a.stdout, "company:  %s\nplan:     %s\ncoverage: %s\n",
					draft.Company, draft.MainPlanName, report.FormatAmount(draft.MainCoverageAmount))
				return nil
			}

			p := draft.Policy(claims.ResolveTag(claims.PlanCategories, category, ""))
			ps, err = claims.AddPolicy(ps, p)
			if err != nil {
				return err
			}
			if err := a.repo.SavePolicies(ctx, id.ID, ps); err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, p); ok {
				return err
			}
			printSuccess(a.stdout, fmt.Sprintf("Added policy %s %s (%s)", p.Company, p.MainPlanName, p.ID))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&save, "save", false, "Add the scanned policy to the book")
	cmd.Flags().StringVar(&category, "category", "", "Plan category or catalog number for the saved policy")
	return cmd
}

func (a *app) riderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rider",
		Short: "Manage the riders of a policy",
	}

	var name, category, description string
	var coverage float64
	add := &cobra.Command{
		Use:   "add POLICY",
		Short: "Attach a rider to a policy",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ps, err := a.policies(ctx)
			if err != nil {
				return err
			}
			p, err := resolvePolicy(ps, args[0])
			if err != nil {
				return err
			}
			r := claims.NewRider(name, claims.ResolveTag(claims.PlanCategories, category, ""), coverage, description)
			ps, err = claims.AddRider(ps, p.ID, r)
			if err != nil {
				return err
			}
			if err := a.repo.SavePolicies(ctx, id.ID, ps); err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, r); ok {
				return err
			}
			printSuccess(a.stdout, fmt.Sprintf("Added rider %s to %s (%s)", r.Name, p.MainPlanName, r.ID))
			return nil
		}),
	}
	add.Flags().StringVar(&name, "name", "", "Rider name (required)")
	add.Flags().StringVar(&category, "category", "", "Rider category or catalog number")
	add.Flags().Float64Var(&coverage, "coverage", 0, "Coverage amount")
	add.Flags().StringVar(&description, "description", "", "What the rider pays for, e.g. \"NT$2,000 per hospital day\"")
	_ = add.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:     "remove POLICY RIDER_ID",
		Aliases: []string{"rm"},
		Short:   "Remove a rider from a policy",
		Args:    cobra.ExactArgs(2),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ps, err := a.policies(ctx)
			if err != nil {
				return err
			}
			p, err := resolvePolicy(ps, args[0])
			if err != nil {
				return err
			}
			ps, ok := claims.RemoveRider(ps, p.ID, args[1])
			if !ok {
				return fmt.Errorf("policy %s has no rider %s", p.ID, args[1])
			}
			if err := a.repo.SavePolicies(ctx, id.ID, ps); err != nil {
				return err
			}
			printSuccess(a.stdout, "Rider removed")
			return nil
		}),
	}

	cmd.AddCommand(add, remove)
	return cmd
}
