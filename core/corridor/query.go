// Package corridor finds pending shipments travelling along the same
// corridor as a new request.
package corridor

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/loadshare/core/logger"
	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/storage"
)

// DefaultBufferMeters is the corridor half-width used for matching.
const DefaultBufferMeters = 10000.0

// Query wraps a storage collaborator and enforces the candidate contract.
type Query struct {
	store  storage.CorridorQuerier
	logger logger.Logger
}

// NewQuery returns a Query backed by store.
func NewQuery(store storage.CorridorQuerier, log logger.Logger) (*Query, error) {
	if store == nil {
		return nil, fmt.Errorf("corridor: nil store")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Query{store: store, logger: log}, nil
}

// FindCandidates returns pending shipments of other companies within
// bufferMeters of the corridor. A non-positive buffer uses
// DefaultBufferMeters. Storage failures are returned wrapping
// model.ErrStorageUnavailable and are not retried.
func (q *Query) FindCandidates(ctx context.Context, origin, destination model.Point, excludeCompanyID string, bufferMeters float64) ([]model.ShipmentRecord, error) {
	if bufferMeters <= 0 {
		bufferMeters = DefaultBufferMeters
	}
	recs, err := q.store.QueryPendingWithinCorridor(ctx, origin, destination, excludeCompanyID, bufferMeters)
	if err != nil {
		if errors.Is(err, model.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	res := make([]model.ShipmentRecord, 0, len(recs))
	for _, r := range recs {
		if r.Status != model.StatusPending || r.CompanyID == excludeCompanyID {
			q.logger.Warnf("dropping shipment %s returned by corridor query (status %s, company %s)", r.ID, r.Status, r.CompanyID)
			continue
		}
		res = append(res, r)
	}
	q.logger.Debugf("corridor query returned %d candidates", len(res))
	return res, nil
}
