package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshare/core/cost"
	"github.com/kilianp07/loadshare/core/events"
	"github.com/kilianp07/loadshare/core/group"
	"github.com/kilianp07/loadshare/core/model"
)

var (
	sanFrancisco = model.Point{Lat: 37.7749, Lng: -122.4194}
	losAngeles   = model.Point{Lat: 34.0522, Lng: -118.2437}
)

func electronicsRequest() model.ShipmentRequest {
	return model.ShipmentRequest{
		Origin:         sanFrancisco,
		Destination:    losAngeles,
		WeightKg:       3500,
		CompanyID:      "acme",
		Industry:       model.IndustryElectronics,
		RevenueBracket: 3,
	}
}

func candidate(id, company string, ind model.Industry, kg float64, b model.RevenueBracket) model.ShipmentRecord {
	return model.ShipmentRecord{
		ID: id, CompanyID: company, Industry: ind, WeightKg: kg, RevenueBracket: b,
		Origin: sanFrancisco, Destination: losAngeles, Status: model.StatusPending,
	}
}

type harness struct {
	store   *fakeStore
	backend *mapBackend
	pub     *fakePublisher
	sink    *fakeSink
	log     *captureLogger
	engine  *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   newFakeStore(),
		backend: &mapBackend{data: map[string]string{}},
		pub:     &fakePublisher{},
		sink:    &fakeSink{},
		log:     &captureLogger{},
	}
	e, err := NewEngine(h.store, h.backend, h.pub, h.sink, h.log, Config{})
	require.NoError(t, err)
	e.SetAssembler(group.Assembler{NewID: func() string { return "group-1" }})
	e.SetClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) })
	h.engine = e
	return h
}

func TestNewEngine_NilStore(t *testing.T) {
	_, err := NewEngine(nil, nil, nil, nil, nil, Config{})
	assert.Error(t, err)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(newFakeStore(), nil, nil, nil, nil, Config{MinBracketScore: 9})
	assert.Error(t, err)
}

func TestFindMatchingLoads_ElectronicsPair(t *testing.T) {
	h := newHarness(t)
	h.store.candidates = []model.ShipmentRecord{candidate("s1", "globex", model.IndustryElectronics, 5000, 3)}

	res, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.NoError(t, err)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, "s1", res.Matches[0].ID)
	assert.Equal(t, "group-1", res.LoadGroup.ID)
	assert.Equal(t, []string{"s1"}, res.LoadGroup.ShipmentIDs)
	assert.Equal(t, []string{"globex", "acme"}, res.LoadGroup.Companies)
	assert.InDelta(t, 8500, res.LoadGroup.TotalWeightKg, 1e-9)

	base := 500*1.5 + 8500*0.1
	require.Len(t, res.CostSplit, 2)
	assert.InDelta(t, base, cost.Total(res.CostSplit), 0.02)
	assert.Equal(t, model.NewRequestID, res.CostSplit[1].ShipmentID)
	assert.Greater(t, res.CostSplit[0].Cost, res.CostSplit[1].Cost)

	require.Len(t, h.pub.events, 1)
	assert.Equal(t, []string{events.TopicLoadMatch}, h.pub.topics)
	assert.Equal(t, events.MatchEvent{
		CompanyID:   "acme",
		MatchCount:  1,
		LoadGroupID: "group-1",
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}, h.pub.events[0])

	require.Len(t, h.sink.matches, 1)
	rec := h.sink.matches[0]
	assert.False(t, rec.CacheHit)
	assert.Equal(t, 1, rec.Candidates)
	assert.Equal(t, 1, rec.Matches)
	assert.InDelta(t, base, rec.TotalCost, 1e-9)
}

func TestFindMatchingLoads_CacheHitSkipsStoreAndPublish(t *testing.T) {
	h := newHarness(t)
	h.store.candidates = []model.ShipmentRecord{candidate("s1", "globex", model.IndustryElectronics, 5000, 3)}
	ctx := context.Background()

	first, err := h.engine.FindMatchingLoads(ctx, electronicsRequest())
	require.NoError(t, err)
	second, err := h.engine.FindMatchingLoads(ctx, electronicsRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.store.queries)
	assert.Len(t, h.pub.events, 1)
	require.Len(t, h.sink.matches, 2)
	assert.True(t, h.sink.matches[1].CacheHit)
}

func TestFindMatchingLoads_FiltersIncompatible(t *testing.T) {
	h := newHarness(t)
	req := electronicsRequest()
	req.Industry = model.IndustryHazardous
	req.RevenueBracket = 4
	h.store.candidates = []model.ShipmentRecord{
		candidate("food", "globex", model.IndustryFood, 1000, 3),
		candidate("haz", "initech", model.IndustryHazardous, 1000, 3),
		candidate("heavy", "umbrella", model.IndustryHazardous, 18000, 3),
		candidate("far", "hooli", model.IndustryHazardous, 1000, 1),
	}

	res, err := h.engine.FindMatchingLoads(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "haz", res.Matches[0].ID)

	rec := h.sink.matches[0]
	assert.Equal(t, 1, rec.RejectedIndustry)
	assert.Equal(t, 1, rec.RejectedWeight)
	assert.Equal(t, 1, rec.RejectedBracket)
}

func TestFindMatchingLoads_NoCandidates(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Empty(t, res.LoadGroup.ShipmentIDs)
	require.Len(t, res.CostSplit, 1)
	assert.InDelta(t, 500*1.5+3500*0.1, res.CostSplit[0].Cost, 0.01)
	require.Len(t, h.pub.events, 1)
	assert.Equal(t, 0, h.pub.events[0].MatchCount)
}

func TestFindMatchingLoads_InvalidRequestDoesNoIO(t *testing.T) {
	h := newHarness(t)
	req := electronicsRequest()
	req.RevenueBracket = 7

	_, err := h.engine.FindMatchingLoads(context.Background(), req)
	require.ErrorIs(t, err, model.ErrInvalidShipment)
	assert.Zero(t, h.store.queries)
	assert.Empty(t, h.backend.data)
	assert.Empty(t, h.pub.events)
	assert.Equal(t, []string{"validate"}, h.sink.stages())
}

func TestFindMatchingLoads_StorageFailure(t *testing.T) {
	h := newHarness(t)
	cause := errors.New("connection reset")
	h.store.queryErr = cause

	res, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.ErrorIs(t, err, model.ErrMatchingFailed)
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, model.MatchResult{}, res)
	assert.Empty(t, h.backend.data)
	assert.Empty(t, h.pub.events)
}

func TestFindMatchingLoads_AssembleFailureStage(t *testing.T) {
	h := newHarness(t)
	h.store.candidates = []model.ShipmentRecord{candidate("neg", "globex", model.IndustryElectronics, -100, 3)}

	_, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.ErrorIs(t, err, model.ErrMatchingFailed)
	assert.ErrorIs(t, err, model.ErrInvalidShipment)
	assert.Equal(t, []string{"assemble"}, h.sink.stages())
	assert.Empty(t, h.pub.events)
}

func TestFindMatchingLoads_AllocateFailureStage(t *testing.T) {
	h := newHarness(t)
	h.engine.SetAllocator(cost.Allocator{RatePerMile: -1, DefaultDistanceMiles: 100, IndividualPremium: 1, WeightShare: 1})

	_, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.ErrorIs(t, err, model.ErrMatchingFailed)
	assert.ErrorIs(t, err, model.ErrInvalidShipment)
	assert.Equal(t, []string{"allocate"}, h.sink.stages())
	assert.Empty(t, h.backend.data)
}

func TestFindMatchingLoads_PublishFailureSwallowed(t *testing.T) {
	h := newHarness(t)
	h.pub.err = errors.New("broker down")

	_, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.NoError(t, err)
	require.Len(t, h.sink.failures, 1)
	assert.Equal(t, "publish", h.sink.failures[0].Stage)
	assert.Equal(t, events.TopicLoadMatch, h.sink.failures[0].Op)
	assert.NotEmpty(t, h.log.warns)
}

func TestFindMatchingLoads_CacheFailureSwallowed(t *testing.T) {
	h := newHarness(t)
	h.backend.getErr = errors.New("redis down")
	h.backend.putErr = errors.New("redis down")

	_, err := h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.NoError(t, err)
	_, err = h.engine.FindMatchingLoads(context.Background(), electronicsRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, h.store.queries)
	assert.Len(t, h.pub.events, 2)
	assert.Equal(t, []string{"cache", "cache", "cache", "cache"}, h.sink.stages())
}

func TestFindMatchingLoads_WarnsAboveGroupCapacity(t *testing.T) {
	h := newHarness(t)
	req := electronicsRequest()
	req.WeightKg = 9000
	h.store.candidates = []model.ShipmentRecord{
		candidate("s1", "globex", model.IndustryElectronics, 9000, 3),
		candidate("s2", "initech", model.IndustryElectronics, 9000, 3),
	}

	res, err := h.engine.FindMatchingLoads(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.Matches, 2)
	assert.InDelta(t, 27000, res.LoadGroup.TotalWeightKg, 1e-9)
	require.Len(t, h.log.warns, 1)
	assert.Contains(t, h.log.warns[0], "group-1")
}

func TestEngine_Close(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.Close())
	assert.True(t, h.store.closed)
	assert.True(t, h.sink.flushed)
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, 10000.0, c.BufferMeters)
	assert.Equal(t, 300, c.CacheTTLSeconds)
	assert.Equal(t, 300*time.Second, c.CacheTTL())
	assert.Equal(t, 20000.0, c.CapacityKg)
	assert.Equal(t, 3, c.MinBracketScore)
	assert.NoError(t, c.Validate())
}

func TestConfig_MinBracketScoreRange(t *testing.T) {
	assert.NoError(t, Config{MinBracketScore: 0}.Validate())
	assert.NoError(t, Config{MinBracketScore: 5}.Validate())

	err := Config{MinBracketScore: 6}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 5")
	assert.Error(t, Config{MinBracketScore: -1}.Validate())
}
