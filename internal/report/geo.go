package report

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// GeoPoint is a latitude/longitude pair. Upstream documents carry
// coordinates under several legacy field-naming conventions
// ({latitude,longitude}, {_latitude,_longitude}, {lat,lng}) and sometimes as
// numeric strings; all shapes are normalized here and marshaled back as
// canonical {latitude,longitude}.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("location is not an object: %w", err)
	}

	lat, latOK := coordinate(raw, "latitude", "_latitude", "lat")
	lng, lngOK := coordinate(raw, "longitude", "_longitude", "lng")
	if !latOK || !lngOK {
		return fmt.Errorf("location missing latitude/longitude pair")
	}

	p.Latitude = lat
	p.Longitude = lng
	return nil
}

// coordinate returns the first usable numeric value among the given keys
func coordinate(raw map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
