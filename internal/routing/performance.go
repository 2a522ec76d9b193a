package routing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lead_funnel_backend/platform/store"
)

// RulePerformance summarizes how often a rule fired and how its leads converted.
type RulePerformance struct {
	RuleID                   string  `json:"ruleId"`
	Triggered                int     `json:"triggered"`
	Succeeded                int     `json:"successful"`
	Skipped                  int     `json:"skipped"`
	Failed                   int     `json:"failed"`
	Conversions              int     `json:"conversions"`
	ConversionRate           float64 `json:"conversionRate"`
	AvgTimeToConversionHours float64 `json:"avgTimeToConversion"`
}

// Counter fields kept per rule.
const (
	fieldTriggered    = "triggered"
	fieldSucceeded    = "succeeded"
	fieldSkipped      = "skipped"
	fieldFailed       = "failed"
	fieldConversions  = "conversions"
	fieldConversionMs = "conversion_ms"

	indexKey    = "index"
	rulePrefix  = "rule:"
	firedPrefix = "fired:"
)

// Performance tracks rule outcomes and attributes conversions to every rule
// that fired for the converting lead. Counters live in a store.Hash so the API
// and the scheduler worker add to the same numbers.
type Performance struct {
	hash store.Hash
}

func NewPerformance(hash store.Hash) *Performance {
	if hash == nil {
		hash = store.NewMemoryHash()
	}
	return &Performance{hash: hash}
}

func (p *Performance) count(ctx context.Context, ruleID, field string) error {
	if _, err := p.hash.SetNX(ctx, indexKey, ruleID, 1); err != nil {
		return err
	}
	return p.hash.Incr(ctx, rulePrefix+ruleID, field, 1)
}

// Triggered records that ruleID fired for leadID at. Only the first firing per
// lead counts towards time-to-conversion.
func (p *Performance) Triggered(ctx context.Context, ruleID, leadID string, at time.Time) error {
	if err := p.count(ctx, ruleID, fieldTriggered); err != nil {
		return err
	}
	_, err := p.hash.SetNX(ctx, firedPrefix+leadID, ruleID, at.UnixMilli())
	return err
}

func (p *Performance) Succeeded(ctx context.Context, ruleID string) error {
	return p.count(ctx, ruleID, fieldSucceeded)
}

func (p *Performance) Skipped(ctx context.Context, ruleID string) error {
	return p.count(ctx, ruleID, fieldSkipped)
}

func (p *Performance) Failed(ctx context.Context, ruleID string) error {
	return p.count(ctx, ruleID, fieldFailed)
}

// Converted attributes a conversion of leadID to every rule that fired for it.
// A lead converts once, so its attribution is dropped afterwards.
func (p *Performance) Converted(ctx context.Context, leadID string, at time.Time) error {
	fired, err := p.hash.GetAll(ctx, firedPrefix+leadID)
	if err != nil {
		return fmt.Errorf("load fired rules: %w", err)
	}
	for ruleID, firedAt := range fired {
		elapsed := at.UnixMilli() - firedAt
		if elapsed < 0 {
			elapsed = 0
		}
		if err := p.hash.Incr(ctx, rulePrefix+ruleID, fieldConversions, 1); err != nil {
			return err
		}
		if err := p.hash.Incr(ctx, rulePrefix+ruleID, fieldConversionMs, elapsed); err != nil {
			return err
		}
	}
	return p.hash.Delete(ctx, firedPrefix+leadID)
}

// Snapshot returns the performance of every rule that fired, ordered by rule id.
func (p *Performance) Snapshot(ctx context.Context) ([]RulePerformance, error) {
	index, err := p.hash.GetAll(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("load rule index: %w", err)
	}

	out := make([]RulePerformance, 0, len(index))
	for ruleID := range index {
		c, err := p.hash.GetAll(ctx, rulePrefix+ruleID)
		if err != nil {
			return nil, fmt.Errorf("load rule %s counters: %w", ruleID, err)
		}
		perf := RulePerformance{
			RuleID:      ruleID,
			Triggered:   int(c[fieldTriggered]),
			Succeeded:   int(c[fieldSucceeded]),
			Skipped:     int(c[fieldSkipped]),
			Failed:      int(c[fieldFailed]),
			Conversions: int(c[fieldConversions]),
		}
		if perf.Triggered > 0 {
			perf.ConversionRate = float64(perf.Conversions) / float64(perf.Triggered)
		}
		if perf.Conversions > 0 {
			total := time.Duration(c[fieldConversionMs]) * time.Millisecond
			perf.AvgTimeToConversionHours = total.Hours() / float64(perf.Conversions)
		}
		out = append(out, perf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out, nil
}
