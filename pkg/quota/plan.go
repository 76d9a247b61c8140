package quota

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Plan describes a subscription plan and its invoice quota.
type Plan struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	InvoiceLimit int64  `yaml:"invoice_limit"` // Unlimited (-1) disables the cap
	TrialDays    int    `yaml:"trial_days"`
}

// Unlimited reports whether the plan has no invoice cap.
func (p Plan) Unlimited() bool {
	return p.InvoiceLimit == Unlimited
}

// Source defines how plans are loaded into the guard.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// inMemSource serves a fixed plan map, mainly for tests and embedded setups.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns a Source serving a copy of the given plans.
func NewInMemSource(plans map[string]Plan) Source {
	return &inMemSource{plans: maps.Clone(plans)}
}

func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.plans), nil
}

// yamlSource loads the plan catalog from a YAML file:
//
//	plans:
//	  - id: basico
//	    name: Básico
//	    invoice_limit: 100
//	    trial_days: 14
//	  - id: ilimitado
//	    name: Ilimitado
//	    invoice_limit: -1
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source reading the plan catalog from path on every
// Load, so a restart picks up catalog changes without a code change.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, p := range doc.Plans {
		if p.ID == "" {
			return nil, errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("plan %q has no id", p.Name))
		}
		if _, dup := plans[p.ID]; dup {
			return nil, errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("duplicate plan id %q", p.ID))
		}
		plans[p.ID] = p
	}

	return plans, nil
}

// validatePlans catches common catalog mistakes early.
func validatePlans(plans map[string]Plan) error {
	for id, p := range plans {
		if p.ID != "" && p.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", id, p.ID))
		}
		if p.TrialDays < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative trial days: %d", id, p.TrialDays))
		}
		if p.InvoiceLimit < Unlimited {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has invalid invoice limit: %d", id, p.InvoiceLimit))
		}
	}
	return nil
}
