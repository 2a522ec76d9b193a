// Package email selects, personalizes and schedules lead nurture sequences.
package email

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"lead_funnel_backend/internal/leads/domain"

	"gopkg.in/yaml.v3"
)

//go:embed sequences.yaml templates/*.txt
var catalogFS embed.FS

// Sequence ids selected by lead state or referenced by routing rules.
const (
	SequenceContentReaderNurture = "content-reader-nurture"
	SequenceWarmLeadConversion   = "warm-lead-conversion"
	SequenceHotLeadImmediate     = "hot-lead-immediate"
	SequenceDataScienceNurture   = "data_science_nurture"
	SequenceReengagement         = "reengagement_campaign"
)

// Condition gates a template at delivery time.
type Condition string

const (
	CondNoQualificationData Condition = "no_qualification_data"
	CondStatusWarmOrHot     Condition = "status_warm_or_hot"
	CondNoConversionYet     Condition = "no_conversion_yet"
)

var conditionChecks = map[Condition]func(domain.Lead) bool{
	CondNoQualificationData: func(l domain.Lead) bool { return !l.HasQualification() },
	CondStatusWarmOrHot: func(l domain.Lead) bool {
		return l.Status == domain.StatusWarm || l.Status == domain.StatusHot
	},
	CondNoConversionYet: func(l domain.Lead) bool { return l.Status != domain.StatusConverted },
}

// Holds reports whether the lead satisfies c.
func (c Condition) Holds(lead domain.Lead) bool {
	check, ok := conditionChecks[c]
	return ok && check(lead)
}

// Template is one email of a sequence.
type Template struct {
	Subject    string        `json:"subject"`
	Body       string        `json:"content"`
	Delay      time.Duration `json:"-"`
	Conditions []Condition   `json:"conditions,omitempty"`
}

// Eligible reports whether every condition of the template holds for lead.
func (t Template) Eligible(lead domain.Lead) bool {
	for _, cond := range t.Conditions {
		if !cond.Holds(lead) {
			return false
		}
	}
	return true
}

// Sequence is an ordered, delay-scheduled list of templates.
type Sequence struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Trigger string     `json:"trigger"`
	Active  bool       `json:"active"`
	Emails  []Template `json:"emails"`
}

// LastDelay is the delay of the latest email in the sequence.
func (s Sequence) LastDelay() time.Duration {
	var last time.Duration
	for _, email := range s.Emails {
		if email.Delay > last {
			last = email.Delay
		}
	}
	return last
}

// Catalog holds the sequences. It is immutable after loading.
type Catalog struct {
	sequences []Sequence
	byID      map[string]int
}

type catalogFile struct {
	Sequences []struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		Trigger string `yaml:"trigger"`
		Active  bool   `yaml:"active"`
		Emails  []struct {
			Subject    string        `yaml:"subject"`
			Body       string        `yaml:"body"`
			Delay      time.Duration `yaml:"delay"`
			Conditions []Condition   `yaml:"conditions"`
		} `yaml:"emails"`
	} `yaml:"sequences"`
}

// LoadCatalog parses the built-in sequences.
func LoadCatalog() (*Catalog, error) {
	data, err := catalogFS.ReadFile("sequences.yaml")
	if err != nil {
		return nil, fmt.Errorf("read sequences: %w", err)
	}
	bodies, err := fs.Sub(catalogFS, "templates")
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data, bodies)
}

// ParseCatalog builds a catalog from YAML, reading template bodies from bodies.
// Unknown conditions and duplicate ids are rejected.
func ParseCatalog(data []byte, bodies fs.FS) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sequences: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(file.Sequences))}
	for _, raw := range file.Sequences {
		if raw.ID == "" {
			return nil, fmt.Errorf("sequence without id")
		}
		if _, dup := c.byID[raw.ID]; dup {
			return nil, fmt.Errorf("duplicate sequence %q", raw.ID)
		}

		seq := Sequence{ID: raw.ID, Name: raw.Name, Trigger: raw.Trigger, Active: raw.Active}
		for i, email := range raw.Emails {
			body, err := fs.ReadFile(bodies, path.Clean(email.Body))
			if err != nil {
				return nil, fmt.Errorf("sequence %s email %d: %w", raw.ID, i, err)
			}
			for _, cond := range email.Conditions {
				if _, ok := conditionChecks[cond]; !ok {
					return nil, fmt.Errorf("sequence %s email %d: unknown condition %q", raw.ID, i, cond)
				}
			}
			if email.Delay < 0 {
				return nil, fmt.Errorf("sequence %s email %d: negative delay", raw.ID, i)
			}
			seq.Emails = append(seq.Emails, Template{
				Subject:    email.Subject,
				Body:       strings.TrimSpace(string(body)),
				Delay:      email.Delay,
				Conditions: email.Conditions,
			})
		}

		c.byID[seq.ID] = len(c.sequences)
		c.sequences = append(c.sequences, seq)
	}
	return c, nil
}

// Get returns the sequence with id.
func (c *Catalog) Get(id string) (Sequence, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Sequence{}, false
	}
	return c.sequences[idx], true
}

// List returns all sequences in file order.
func (c *Catalog) List() []Sequence {
	out := make([]Sequence, len(c.sequences))
	copy(out, c.sequences)
	return out
}

// Select picks the sequence matching the lead's state: hot, then warm, then
// anonymous content readers. It reports false when none applies.
func (c *Catalog) Select(lead domain.Lead) (Sequence, bool) {
	var id string
	switch {
	case lead.Status == domain.StatusHot:
		id = SequenceHotLeadImmediate
	case lead.Status == domain.StatusWarm:
		id = SequenceWarmLeadConversion
	case len(lead.Engagement.ContentViewed) > 0 && !lead.HasEmail():
		id = SequenceContentReaderNurture
	default:
		return Sequence{}, false
	}
	return c.Get(id)
}
