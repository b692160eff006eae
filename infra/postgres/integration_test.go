package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/loadshare/core/model"
)

// TestIntegration runs the store against a disposable PostGIS container.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgis/postgis:16-3.4",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "loadshare",
				"POSTGRES_PASSWORD": "loadshare",
				"POSTGRES_DB":       "loadshare",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://loadshare:loadshare@%s:%s/loadshare?sslmode=disable", host, port.Port())
	store, err := Open(ctx, Config{DSN: dsn, Migrate: true}, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sf := model.Point{Lat: 37.7749, Lng: -122.4194}
	la := model.Point{Lat: 34.0522, Lng: -118.2437}
	sacramento := model.Point{Lat: 38.5816, Lng: -121.4944}
	for _, r := range []model.ShipmentRecord{
		{ID: "near", CompanyID: "globex", Origin: model.Point{Lat: 37.80, Lng: -122.42}, Destination: la, WeightKg: 5000, Industry: model.IndustryElectronics, RevenueBracket: 3},
		{ID: "far", CompanyID: "globex", Origin: sacramento, Destination: la, WeightKg: 1000, Industry: model.IndustryElectronics, RevenueBracket: 3},
		{ID: "own", CompanyID: "acme", Origin: sf, Destination: la, WeightKg: 1000, Industry: model.IndustryElectronics, RevenueBracket: 3},
		{ID: "req", CompanyID: "acme", Origin: sf, Destination: la, WeightKg: 3500, Industry: model.IndustryElectronics, RevenueBracket: 3},
	} {
		require.NoError(t, store.SaveShipment(ctx, r))
	}

	got, err := store.QueryPendingWithinCorridor(ctx, sf, la, "acme", 10000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].ID)
	assert.InDelta(t, 37.80, got[0].Origin.Lat, 1e-9)

	g := model.LoadGroup{ID: "group-it", ShipmentIDs: []string{"near", "req"}, TotalWeightKg: 8500}
	splits := []model.CostSplit{
		{ShipmentID: "near", CompanyID: "globex", Cost: 900},
		{ShipmentID: "req", CompanyID: "acme", Cost: 700},
	}
	pg, err := store.PersistLoadGroup(ctx, g, 1600, splits)
	require.NoError(t, err)
	require.NotNil(t, pg.DistanceMeters)
	assert.Greater(t, *pg.DistanceMeters, 500000.0)
	assert.Contains(t, pg.RouteGeometry, "LINESTRING")

	near, err := store.GetShipment(ctx, "near")
	require.NoError(t, err)
	assert.Equal(t, model.StatusMatched, near.Status)

	sp, err := store.GetCostSplit(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, "group-it", sp.GroupID)

	list, err := store.ListGroupSplits(ctx, "group-it")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "near", list[0].ShipmentID)

	stored, err := store.GetGroup(ctx, "group-it")
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "req"}, stored.ShipmentIDs)
	assert.Equal(t, 1600.0, stored.TotalCost)

	_, err = store.PersistLoadGroup(ctx, model.LoadGroup{ID: "ghost", ShipmentIDs: []string{"missing"}}, 1, nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = store.GetGroup(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
