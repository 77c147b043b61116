package odb

import (
	"encoding/json"
	"fmt"
)

// Coordinates is the position echoed back for a created target.
type Coordinates struct {
	RA struct {
		HMS string `json:"hms"`
	} `json:"ra"`
	Dec struct {
		DMS string `json:"dms"`
	} `json:"dec"`
}

// Sidereal is the Sidereal tracking variant of a created target.
type Sidereal struct {
	Coordinates  Coordinates       `json:"coordinates"`
	Epoch        string            `json:"epoch"`
	ProperMotion ProperMotionInput `json:"properMotion"`
	// RadialVelocity comes back in km/s.
	RadialVelocity struct {
		KilometersPerSecond float64 `json:"kilometersPerSecond"`
	} `json:"radialVelocity"`
	// Parallax comes back in µas.
	Parallax struct {
		Microarcseconds float64 `json:"microarcseconds"`
	} `json:"parallax"`
}

// Tracking is the union of tracking models, keyed by __typename. Sidereal is
// set only for the "Sidereal" variant.
type Tracking struct {
	Typename string
	Sidereal *Sidereal
}

// UnmarshalJSON decodes the variant selected by __typename.
func (t *Tracking) UnmarshalJSON(data []byte) error {
	var head struct {
		Typename string `json:"__typename"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	t.Typename = head.Typename
	t.Sidereal = nil
	if head.Typename == "Sidereal" {
		var s Sidereal
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode Sidereal tracking: %w", err)
		}
		t.Sidereal = &s
	}
	return nil
}

// MarshalJSON writes the variant back out with its __typename.
func (t Tracking) MarshalJSON() ([]byte, error) {
	if t.Sidereal == nil {
		return json.Marshal(struct {
			Typename string `json:"__typename"`
		}{t.Typename})
	}
	return json.Marshal(struct {
		Typename string `json:"__typename"`
		*Sidereal
	}{t.Typename, t.Sidereal})
}

// CreatedTarget is the typed form of data.createSiderealTarget.
type CreatedTarget struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Tracking   Tracking         `json:"tracking"`
	Magnitudes []MagnitudeInput `json:"magnitudes"`
}

// createResponseData is the "data" member of a CreateSiderealTarget response.
type createResponseData struct {
	CreateSiderealTarget json.RawMessage `json:"createSiderealTarget"`
}

// DecodeCreated parses a Success payload into a CreatedTarget.
func DecodeCreated(payload json.RawMessage) (CreatedTarget, error) {
	var ct CreatedTarget
	if err := json.Unmarshal(payload, &ct); err != nil {
		return CreatedTarget{}, fmt.Errorf("odb: decode created target: %w", err)
	}
	return ct, nil
}
