// Package geo infers a device position from its telemetry.
//
// Field devices rarely have their coordinates entered by hand. Many publish
// their GPS fix inside the decoded payload, and gateways sometimes attach
// their own location to the receive metadata. Extract pulls a usable
// position out of either, preferring what the device itself reported.
package geo

import (
	"encoding/json"
	"strconv"

	"github.com/mariemm1/IoTIrrigation/internal/telemetry"
)

// Point is a geographic position. Altitude is optional; most payloads
// carry only the horizontal fix.
type Point struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Altitude *float64 `json:"altitude,omitempty"`
}

// Key aliases accepted in decoded payloads, checked in order.
var (
	latKeys = []string{"lat", "latitude", "gps_lat", "gpsLatitude"}
	lngKeys = []string{"lng", "lon", "longitude", "gps_lon", "gpsLongitude"}
	altKeys = []string{"alt", "altitude", "gps_alt", "gpsAltitude"}

	nestedKeys = []string{"gps", "location", "coordinates"}

	nestedLatKeys = []string{"lat", "latitude"}
	nestedLngKeys = []string{"lng", "lon", "longitude"}
	nestedAltKeys = []string{"alt", "altitude"}
)

// Extract finds a position in a reading.
//
// Precedence:
//  1. Flat keys in the decoded payload (lat/latitude/gps_lat/..., lng/lon/...).
//  2. A nested gps, location, or coordinates object in the payload.
//  3. The first gateway location in the receive metadata.
//
// Both latitude and longitude must be present at a step for it to match;
// a lone coordinate never produces a point. Numeric strings count as
// numbers. Returns false when no step yields a full position.
func Extract(r *telemetry.Reading) (Point, bool) {
	if r == nil {
		return Point{}, false
	}

	if p, ok := fromPayload(r.Object); ok {
		return p, true
	}
	return fromGateways(r.RxInfo)
}

// fromPayload checks the decoded payload, flat keys first, then nested
// objects.
func fromPayload(obj map[string]any) (Point, bool) {
	if obj == nil {
		return Point{}, false
	}

	lat, latOK := lookupNumber(obj, latKeys)
	lng, lngOK := lookupNumber(obj, lngKeys)
	alt, altOK := lookupNumber(obj, altKeys)

	if !latOK || !lngOK {
		if nested := lookupMap(obj, nestedKeys); nested != nil {
			if !latOK {
				lat, latOK = lookupNumber(nested, nestedLatKeys)
			}
			if !lngOK {
				lng, lngOK = lookupNumber(nested, nestedLngKeys)
			}
			if !altOK {
				alt, altOK = lookupNumber(nested, nestedAltKeys)
			}
		}
	}

	if !latOK || !lngOK {
		return Point{}, false
	}

	p := Point{Lat: lat, Lng: lng}
	if altOK {
		p.Altitude = &alt
	}
	return p, true
}

// fromGateways checks each gateway's location object in order.
func fromGateways(rxInfo []map[string]any) (Point, bool) {
	for _, rx := range rxInfo {
		loc, ok := rx["location"].(map[string]any)
		if !ok {
			continue
		}

		lat, latOK := asFloat(loc["latitude"])
		lng, lngOK := asFloat(loc["longitude"])
		if !latOK || !lngOK {
			continue
		}

		p := Point{Lat: lat, Lng: lng}
		if alt, ok := asFloat(loc["altitude"]); ok {
			p.Altitude = &alt
		}
		return p, true
	}
	return Point{}, false
}

// lookupNumber returns the first key that holds a numeric value.
func lookupNumber(m map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := asFloat(m[k]); ok {
			return v, true
		}
	}
	return 0, false
}

// lookupMap returns the first key that holds a nested object.
func lookupMap(m map[string]any, keys []string) map[string]any {
	for _, k := range keys {
		if nested, ok := m[k].(map[string]any); ok {
			return nested
		}
	}
	return nil
}

// asFloat converts JSON numbers and numeric strings to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
