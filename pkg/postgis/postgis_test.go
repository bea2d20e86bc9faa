package postgis

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	opts := Options{Host: "localhost", Port: 5432, User: "geo", Password: "secret", Database: "geodb"}
	assert.Equal(t, "host=localhost port=5432 user=geo password=secret dbname=geodb sslmode=disable", opts.DSN())
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "CREATE TABLE x (", firstLine("\n\tCREATE TABLE x (\n\tid TEXT\n);"))
	assert.Equal(t, "ANALYZE places;", firstLine("ANALYZE places;"))
}

func TestNearbySearchRejectsInvalidRadius(t *testing.T) {
	s := NewStore(nil)
	resp, err := s.NearbySearch(context.Background(), places.Request{Type: "police"})
	require.Error(t, err)
	assert.Equal(t, places.StatusInvalidRequest, resp.Status)
}

// TestIntegration runs against a live PostGIS instance when POSTGIS_DSN is set,
// e.g. POSTGIS_DSN="host=localhost port=5432 user=geo password=geo dbname=geodb sslmode=disable".
func TestIntegration(t *testing.T) {
	dsn := os.Getenv("POSTGIS_DSN")
	if dsn == "" {
		t.Skip("POSTGIS_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	store := NewStore(db)
	defer store.Close()

	require.NoError(t, store.InitSchema(ctx))
	_, err = db.ExecContext(ctx, "DELETE FROM places WHERE id LIKE 'itest-%'")
	require.NoError(t, err)

	rating := 4.2
	ps := []*models.Place{
		{PlaceResult: models.PlaceResult{ID: "itest-1", Name: "Delegacia Central", Types: []string{"police"},
			Location: models.Position{Lat: -15.7512, Lon: -47.8925}, Rating: &rating}, Keywords: "delegacia central police"},
		{PlaceResult: models.PlaceResult{ID: "itest-2", Name: "Posto Policial", Types: []string{"police"},
			Location: models.Position{Lat: -15.7520, Lon: -47.8930}}, Keywords: "posto policial police"},
	}
	require.NoError(t, store.BulkInsertPlaces(ctx, ps, 1))

	resp, err := store.NearbySearch(ctx, places.Request{
		Location: models.Position{Lat: -15.7520, Lon: -47.8930},
		Radius:   5000,
		Keyword:  "delegacia",
		Type:     "police",
	})
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.Equal(t, "itest-1", resp.Results[0].ID)
	require.NotNil(t, resp.Results[0].Rating)
	assert.InDelta(t, 4.2, *resp.Results[0].Rating, 1e-9)

	resp, err = store.NearbySearch(ctx, places.Request{
		Location: models.Position{Lat: -15.7520, Lon: -47.8930},
		Radius:   5000,
		Type:     "local_government_office",
	})
	require.NoError(t, err)
	assert.Equal(t, places.StatusZeroResults, resp.Status)
}
