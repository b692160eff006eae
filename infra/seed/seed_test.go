package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/infra/memory"
)

const fixture = `shipments:
  - id: s1
    company_id: globex
    origin: {lat: 37.7749, lng: -122.4194}
    destination: {lat: 34.0522, lng: -118.2437}
    weight: 5000
    industry: electronics
    revenue_bracket: 3
  - company_id: initech
    origin: {lat: 37.7749, lng: -122.4194}
    destination: {lat: 34.0522, lng: -118.2437}
    weight: 1200
    industry: food
    revenue_bracket: 2
    status: delivered
`

func TestDecode(t *testing.T) {
	recs, err := Decode(strings.NewReader(fixture))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "s1", recs[0].ID)
	assert.Equal(t, model.StatusPending, recs[0].Status)
	assert.Equal(t, model.IndustryElectronics, recs[0].Industry)
	assert.Equal(t, model.RevenueBracket(3), recs[0].RevenueBracket)
	assert.NotEmpty(t, recs[1].ID)
	assert.Equal(t, model.StatusDelivered, recs[1].Status)
}

func TestDecode_RejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown field": "shipments:\n  - id: x\n    colour: red\n",
		"bad latitude":  "shipments:\n  - id: x\n    origin: {lat: 95, lng: 0}\n",
		"negative":      "shipments:\n  - id: x\n    weight: -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	recs, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	recs, err := LoadFile(path)
	require.NoError(t, err)

	store := memory.New()
	n, err := Apply(context.Background(), store, recs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err := store.GetShipment(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.WeightKg)
}
