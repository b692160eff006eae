package compat

import "github.com/kilianp07/loadshare/core/model"

// compatibility lists, per requesting industry, the industries it may share
// a truck with. The table is defined per key; symmetry is not enforced.
var compatibility = map[model.Industry][]model.Industry{
	model.IndustryFood:          {model.IndustryFood, model.IndustryConsumerGoods},
	model.IndustryHazardous:     {model.IndustryHazardous},
	model.IndustryConsumerGoods: {model.IndustryConsumerGoods, model.IndustryFood, model.IndustryElectronics},
	model.IndustryElectronics:   {model.IndustryElectronics, model.IndustryConsumerGoods},
	model.IndustryAutomotive:    {model.IndustryAutomotive, model.IndustryIndustrial},
	model.IndustryIndustrial:    {model.IndustryIndustrial, model.IndustryAutomotive, model.IndustryRawMaterials},
	model.IndustryRawMaterials:  {model.IndustryRawMaterials, model.IndustryIndustrial},
}

// CompatibleSet returns the industries the requester may share with.
// Industries without an entry are compatible only with themselves.
func CompatibleSet(requester model.Industry) []model.Industry {
	if set, ok := compatibility[requester]; ok {
		out := make([]model.Industry, len(set))
		copy(out, set)
		return out
	}
	return []model.Industry{requester}
}

// Compatible reports whether a candidate industry may join a requester's truck.
func Compatible(requester, candidate model.Industry) bool {
	set, ok := compatibility[requester]
	if !ok {
		return requester == candidate
	}
	for _, i := range set {
		if i == candidate {
			return true
		}
	}
	return false
}

// BracketScore returns 5 minus the bracket distance. Lower distance scores
// higher; identical brackets score 5.
func BracketScore(requester, candidate model.RevenueBracket) int {
	diff := int(candidate) - int(requester)
	if diff < 0 {
		diff = -diff
	}
	return 5 - diff
}
