package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoPoint_CanonicalShape(t *testing.T) {
	var p GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"latitude": 6.5244, "longitude": 3.3792}`), &p))
	assert.Equal(t, 6.5244, p.Latitude)
	assert.Equal(t, 3.3792, p.Longitude)
}

func TestGeoPoint_UnderscoreShape(t *testing.T) {
	var p GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"_latitude": 6.5244, "_longitude": 3.3792}`), &p))
	assert.Equal(t, 6.5244, p.Latitude)
	assert.Equal(t, 3.3792, p.Longitude)
}

func TestGeoPoint_ShortShape(t *testing.T) {
	var p GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"lat": 6.5244, "lng": 3.3792}`), &p))
	assert.Equal(t, 6.5244, p.Latitude)
	assert.Equal(t, 3.3792, p.Longitude)
}

func TestGeoPoint_StringValues(t *testing.T) {
	var p GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"lat": "6.5244", "lng": "3.3792"}`), &p))
	assert.Equal(t, 6.5244, p.Latitude)
	assert.Equal(t, 3.3792, p.Longitude)
}

func TestGeoPoint_PreferredKeyWins(t *testing.T) {
	// Canonical key takes precedence over aliases
	var p GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"latitude": 1, "lat": 2, "longitude": 3, "lng": 4}`), &p))
	assert.Equal(t, 1.0, p.Latitude)
	assert.Equal(t, 3.0, p.Longitude)
}

func TestGeoPoint_IncompletePair(t *testing.T) {
	var p GeoPoint
	assert.Error(t, json.Unmarshal([]byte(`{"latitude": 6.5244}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"lng": 3.3792}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"lat": "not a number", "lng": 1}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &p))
}

func TestGeoPoint_MarshalCanonical(t *testing.T) {
	var p GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"lat": "6.5244", "lng": "3.3792"}`), &p))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude": 6.5244, "longitude": 3.3792}`, string(data))
}

func TestIncidentReport_MapURL(t *testing.T) {
	withCoords := IncidentReport{
		LocationName: "Yaba Market",
		Location:     &GeoPoint{Latitude: 6.5244, Longitude: 3.3792},
	}
	assert.Equal(t,
		"https://maps.google.com/maps?q=6.5244,3.3792&z=15&output=embed",
		withCoords.MapURL())

	nameOnly := IncidentReport{LocationName: "Yaba Market"}
	assert.Equal(t,
		"https://maps.google.com/maps?q=Yaba+Market&z=13&output=embed",
		nameOnly.MapURL())

	bare := IncidentReport{}
	assert.Equal(t, "", bare.MapURL())
}
