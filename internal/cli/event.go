package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/evidence"
)

type eventFlags struct {
	incidentType   string
	incidentOther  string
	diagnosis      string
	treatment      string
	treatmentOther string
	surgery        string
	days           int
	visits         int
	expense        float64
	retained       float64
	date           string
	evidence       []string
}

// event assembles the incident. The diagnosis and surgery texts carry the
// chosen incident type and treatment as a "[tag] text" prefix.
func (f eventFlags) event(lang claims.Language, now time.Time) claims.MedicalEvent {
	e := claims.MedicalEvent{
		Diagnosis:           f.diagnosis,
		SurgeryName:         f.surgery,
		HospitalizationDays: f.days,
		OutpatientVisits:    f.visits,
		TotalExpense:        f.expense,
		RetainedAmount:      f.retained,
		IncidentDate:        f.date,
		EvidenceFiles:       []claims.InlineDocument{},
	}
	if tag := claims.ResolveTag(claims.IncidentTypes, f.incidentType, f.incidentOther); tag != "" {
		e.Diagnosis = claims.TaggedText(tag, f.diagnosis, "")
	}
	if tag := claims.ResolveTag(claims.TreatmentMethods, f.treatment, f.treatmentOther); tag != "" {
		e.SurgeryName = claims.TaggedText(tag, f.surgery, lang.Phrase(claims.PhraseNoSpecificSurgery))
	}
	if e.IncidentDate == "" {
		e.IncidentDate = now.Format("2006-01-02")
	}
	return e
}

func (a *app) eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"incident"},
		Short:   "Record the current medical incident",
	}
	cmd.AddCommand(a.eventSetCmd(), a.eventShowCmd(), a.eventClearCmd())
	return cmd
}

func (a *app) eventSetCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the current incident",
		Long: `Replace the current incident. --incident-type and --treatment take an entry
or its number from 'claimestimate catalog incidents|treatments'; choosing the
"other" entry uses --incident-other / --treatment-other instead. Evidence
files (PDF, JPEG, PNG, GIF, WebP) are sent to the AI model with the incident.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e := f.event(a.lang(), time.Now())
			docs, err := evidence.EncodeFiles(ctx, f.evidence)
			if err != nil {
				return err
			}
			e.EvidenceFiles = docs
			if err := claims.ValidateEvent(e); err != nil {
				return err
			}
			if err := a.repo.SaveCurrentEvent(ctx, e); err != nil {
				return err
			}
			// A cached estimate belongs to the previous incident.
			if err := a.repo.ClearLastEstimate(ctx); err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, newEventView(e)); ok {
				return err
			}
			printSuccess(a.stdout, "Incident saved")
			return nil
		}),
	}
	fl := cmd.Flags()
	fl.StringVar(&f.incidentType, "incident-type", "", "Incident type or catalog number")
	fl.StringVar(&f.incidentOther, "incident-other", "", "Incident type when the catalog entry is \"other\"")
	fl.StringVar(&f.diagnosis, "diagnosis", "", "Diagnosis text")
	fl.StringVar(&f.treatment, "treatment", "", "Treatment method or catalog number")
	fl.StringVar(&f.treatmentOther, "treatment-other", "", "Treatment method when the catalog entry is \"other\"")
	fl.StringVar(&f.surgery, "surgery", "", "Surgery or procedure name")
	fl.IntVar(&f.days, "days", 0, "Hospitalization days")
	fl.IntVar(&f.visits, "visits", 0, "Outpatient visits")
	fl.Float64Var(&f.expense, "expense", 0, "Total medical expense")
	fl.Float64Var(&f.retained, "retained", 0, "Amount already reimbursed by national health insurance")
	fl.StringVar(&f.date, "date", "", "Incident date YYYY-MM-DD (default today)")
	fl.StringArrayVarP(&f.evidence, "evidence", "e", nil, "Evidence file (repeatable)")
	return cmd
}

func (a *app) eventShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current incident",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			e, ok, err := a.repo.LoadCurrentEvent(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errNoEvent
			}
			if ok, err := encode(a.stdout, a.output, newEventView(e)); ok {
				return err
			}
			displayEvent(a.stdout, e)
			return nil
		}),
	}
}

func (a *app) eventClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the current incident and its cached estimate",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := a.repo.ClearCurrentEvent(cmd.Context()); err != nil {
				return err
			}
			printSuccess(a.stdout, "Incident cleared")
			return nil
		}),
	}
}
