// Package compat narrows corridor candidates down to the shipments that may
// legally and commercially share a truck with a new request.
package compat

import "github.com/kilianp07/loadshare/core/model"

const (
	// VehicleCapacityKg is the payload ceiling of one truck (44,000 lbs).
	VehicleCapacityKg = 20000.0
	// MinBracketScore is the lowest revenue-bracket affinity accepted.
	MinBracketScore = 3
)

// Rejections counts candidates dropped by each rule.
type Rejections struct {
	Industry int `json:"industry"`
	Weight   int `json:"weight"`
	Bracket  int `json:"bracket"`
}

// Total returns the number of rejected candidates.
func (r Rejections) Total() int { return r.Industry + r.Weight + r.Bracket }

// Filter applies the industry, weight and revenue-bracket rules in order.
type Filter interface {
	Filter(candidates []model.ShipmentRecord, industry model.Industry, newWeightKg float64, bracket model.RevenueBracket) []model.ShipmentRecord
}

// StatsFilter is a Filter that also reports why candidates were dropped.
type StatsFilter interface {
	Filter
	FilterWithStats(candidates []model.ShipmentRecord, industry model.Industry, newWeightKg float64, bracket model.RevenueBracket) ([]model.ShipmentRecord, Rejections)
}

// RuleFilter is the default Filter. The weight check is pairwise: each
// candidate is compared with the new request alone, not with the running
// group total.
type RuleFilter struct {
	CapacityKg      float64
	MinBracketScore int
}

// NewRuleFilter returns a filter using the policy constants.
func NewRuleFilter() RuleFilter {
	return RuleFilter{CapacityKg: VehicleCapacityKg, MinBracketScore: MinBracketScore}
}

// Filter returns the candidates passing every rule, preserving input order.
func (f RuleFilter) Filter(candidates []model.ShipmentRecord, industry model.Industry, newWeightKg float64, bracket model.RevenueBracket) []model.ShipmentRecord {
	kept, _ := f.FilterWithStats(candidates, industry, newWeightKg, bracket)
	return kept
}

// FilterWithStats is Filter that also reports why candidates were dropped.
// A candidate is counted once, against the first rule it fails.
func (f RuleFilter) FilterWithStats(candidates []model.ShipmentRecord, industry model.Industry, newWeightKg float64, bracket model.RevenueBracket) ([]model.ShipmentRecord, Rejections) {
	capacity := f.CapacityKg
	if capacity <= 0 {
		capacity = VehicleCapacityKg
	}
	minScore := f.MinBracketScore
	if minScore == 0 {
		minScore = MinBracketScore
	}

	var rej Rejections
	res := make([]model.ShipmentRecord, 0, len(candidates))
	for _, c := range candidates {
		if !Compatible(industry, c.Industry) {
			rej.Industry++
			continue
		}
		if c.WeightKg+newWeightKg > capacity {
			rej.Weight++
			continue
		}
		if BracketScore(bracket, c.RevenueBracket) < minScore {
			rej.Bracket++
			continue
		}
		res = append(res, c)
	}
	return res, rej
}
