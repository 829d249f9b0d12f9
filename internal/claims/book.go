package claims

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Policy book helpers are pure: they return a new slice and never mutate the
// caller's policies.

func NewPolicy(company, planName, category string, coverage float64) Policy {
	return Policy{
		ID:                 uuid.NewString(),
		Company:            strings.TrimSpace(company),
		MainPlanName:       strings.TrimSpace(planName),
		MainPlanCategory:   strings.TrimSpace(category),
		MainCoverageAmount: coverage,
		Riders:             []Rider{},
	}
}

func NewRider(name, category string, coverage float64, description string) Rider {
	return Rider{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		Category:       strings.TrimSpace(category),
		CoverageAmount: coverage,
		Description:    strings.TrimSpace(description),
	}
}

func AddPolicy(ps []Policy, p Policy) ([]Policy, error) {
	if err := ValidatePolicy(p); err != nil {
		return ps, err
	}
	if _, ok := FindPolicy(ps, p.ID); ok {
		return ps, invalidPolicy("duplicate policy id %s", p.ID)
	}
	out := append(ClonePolicies(ps), p)
	return out, nil
}

// RemovePolicy drops the policy and, with it, all of its riders.
func RemovePolicy(ps []Policy, id string) ([]Policy, bool) {
	out := make([]Policy, 0, len(ps))
	removed := false
	for _, p := range ps {
		if p.ID == id {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return out, removed
}

func AddRider(ps []Policy, policyID string, r Rider) ([]Policy, error) {
	out := ClonePolicies(ps)
	for i := range out {
		if out[i].ID != policyID {
			continue
		}
		candidate := out[i]
		candidate.Riders = append(append([]Rider{}, candidate.Riders...), r)
		if err := ValidatePolicy(candidate); err != nil {
			return ps, err
		}
		out[i] = candidate
		return out, nil
	}
	return ps, invalidPolicy("policy %s not found", policyID)
}

func RemoveRider(ps []Policy, policyID, riderID string) ([]Policy, bool) {
	out := ClonePolicies(ps)
	for i := range out {
		if out[i].ID != policyID {
			continue
		}
		kept := make([]Rider, 0, len(out[i].Riders))
		for _, r := range out[i].Riders {
			if r.ID != riderID {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(out[i].Riders) {
			return ps, false
		}
		out[i].Riders = kept
		return out, true
	}
	return ps, false
}

func FindPolicy(ps []Policy, id string) (Policy, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Policy{}, false
}

// ClonePolicies copies the policies and their rider slices.
func ClonePolicies(ps []Policy) []Policy {
	out := make([]Policy, len(ps))
	for i, p := range ps {
		p.Riders = append([]Rider{}, p.Riders...)
		out[i] = p
	}
	return out
}

// Identity is the unauthenticated local identity echo. Its ID namespaces all
// per-user storage keys.
type Identity struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

func NewIdentity(email, name string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, errors.New("email is required to derive a local identity")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return Identity{
		ID:    base64.StdEncoding.EncodeToString([]byte(email)),
		Name:  name,
		Email: email,
	}, nil
}
