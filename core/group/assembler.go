// Package group builds load groups from filtered candidates and a new request.
package group

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/loadshare/core/model"
)

// Assembler combines candidates and the new request into one load group.
type Assembler struct {
	// NewID generates group identifiers. Defaults to "group-<uuid>".
	NewID func() string
}

// NewAssembler returns an Assembler with random group identifiers.
func NewAssembler() Assembler {
	return Assembler{NewID: func() string { return "group-" + uuid.NewString() }}
}

// Assemble returns the load group together with the participants used for
// cost allocation. Candidates come first and the request last, under the
// NewRequestID placeholder which is kept out of ShipmentIDs.
func (a Assembler) Assemble(candidates []model.ShipmentRecord, req model.ShipmentRequest) (model.LoadGroup, []model.Participant, error) {
	participants := make([]model.Participant, 0, len(candidates)+1)
	for _, c := range candidates {
		participants = append(participants, c.Participant())
	}
	participants = append(participants, req.Participant())

	newID := a.NewID
	if newID == nil {
		newID = NewAssembler().NewID
	}
	g := model.LoadGroup{
		ID:          newID(),
		ShipmentIDs: make([]string, 0, len(candidates)),
		Companies:   make([]string, 0, len(participants)),
	}
	for _, p := range participants {
		if err := model.ValidateWeight(p.WeightKg); err != nil {
			return model.LoadGroup{}, nil, fmt.Errorf("participant %s: %w", p.ShipmentID, err)
		}
		if p.ShipmentID != model.NewRequestID {
			g.ShipmentIDs = append(g.ShipmentIDs, p.ShipmentID)
		}
		g.Companies = append(g.Companies, p.CompanyID)
		g.TotalWeightKg += p.WeightKg
	}
	return g, participants, nil
}
