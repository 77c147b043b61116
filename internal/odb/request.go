package odb

import (
	"errors"
	"fmt"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/graphql"
)

// HMSInput is a right ascension in the mutation input.
type HMSInput struct {
	HMS string `json:"hms"`
}

// DMSInput is a declination in the mutation input.
type DMSInput struct {
	DMS string `json:"dms"`
}

// RateInput is one proper motion component in the mutation input.
type RateInput struct {
	MilliarcsecondsPerYear float64 `json:"milliarcsecondsPerYear"`
}

// ProperMotionInput carries both proper motion components.
type ProperMotionInput struct {
	RA  RateInput `json:"ra"`
	Dec RateInput `json:"dec"`
}

// RadialVelocityInput is a radial velocity in the mutation input.
type RadialVelocityInput struct {
	MetersPerSecond float64 `json:"metersPerSecond"`
}

// ParallaxInput is a parallax in the mutation input.
type ParallaxInput struct {
	Milliarcseconds float64 `json:"milliarcseconds"`
}

// MagnitudeInput is one magnitude entry in the mutation input.
type MagnitudeInput struct {
	Band   string  `json:"band"`
	Value  float64 `json:"value"`
	System string  `json:"system"`
}

// CreateSiderealInput is the CreateSiderealInput GraphQL input object.
type CreateSiderealInput struct {
	Name           string              `json:"name"`
	RA             HMSInput            `json:"ra"`
	Dec            DMSInput            `json:"dec"`
	Epoch          string              `json:"epoch"`
	ProperMotion   ProperMotionInput   `json:"properMotion"`
	RadialVelocity RadialVelocityInput `json:"radialVelocity"`
	Parallax       ParallaxInput       `json:"parallax"`
	Magnitudes     []MagnitudeInput    `json:"magnitudes"`
	ProgramIDs     []string            `json:"programIds"`
}

// Variables is the variables object of a CreateSiderealTarget request.
type Variables struct {
	CreateSidereal CreateSiderealInput `json:"createSidereal"`
}

// ErrEmptyProgramID is returned by BuildRequest when no program id is given.
var ErrEmptyProgramID = errors.New("odb: program id is required")

// NewCreateSiderealInput converts t into mutation input owned by programID.
// Any ProgramIDs already on t are replaced.
func NewCreateSiderealInput(t catalog.Target, programID string) CreateSiderealInput {
	mags := make([]MagnitudeInput, len(t.Magnitudes))
	for i, m := range t.Magnitudes {
		mags[i] = MagnitudeInput{Band: m.Band, Value: m.Value, System: m.System}
	}
	return CreateSiderealInput{
		Name:  t.Name,
		RA:    HMSInput{HMS: t.RA.HMS},
		Dec:   DMSInput{DMS: t.Dec.DMS},
		Epoch: t.Epoch,
		ProperMotion: ProperMotionInput{
			RA:  RateInput{MilliarcsecondsPerYear: t.ProperMotion.RA.MilliarcsecondsPerYear},
			Dec: RateInput{MilliarcsecondsPerYear: t.ProperMotion.Dec.MilliarcsecondsPerYear},
		},
		RadialVelocity: RadialVelocityInput{MetersPerSecond: t.RadialVelocity.MetersPerSecond},
		Parallax:       ParallaxInput{Milliarcseconds: t.Parallax.Milliarcseconds},
		Magnitudes:     mags,
		ProgramIDs:     []string{programID},
	}
}

// Record converts the input back into a catalog target.
func (in CreateSiderealInput) Record() catalog.Target {
	var mags []catalog.Magnitude
	if in.Magnitudes != nil {
		mags = make([]catalog.Magnitude, len(in.Magnitudes))
		for i, m := range in.Magnitudes {
			mags[i] = catalog.Magnitude{Band: m.Band, Value: m.Value, System: m.System}
		}
	}
	var programs []string
	if in.ProgramIDs != nil {
		programs = append([]string(nil), in.ProgramIDs...)
	}
	return catalog.Target{
		Name:  in.Name,
		RA:    catalog.RA{HMS: in.RA.HMS},
		Dec:   catalog.Dec{DMS: in.Dec.DMS},
		Epoch: in.Epoch,
		ProperMotion: catalog.ProperMotion{
			RA:  catalog.AngularRate{MilliarcsecondsPerYear: in.ProperMotion.RA.MilliarcsecondsPerYear},
			Dec: catalog.AngularRate{MilliarcsecondsPerYear: in.ProperMotion.Dec.MilliarcsecondsPerYear},
		},
		RadialVelocity: catalog.RadialVelocity{MetersPerSecond: in.RadialVelocity.MetersPerSecond},
		Parallax:       catalog.Parallax{Milliarcseconds: in.Parallax.Milliarcseconds},
		Magnitudes:     mags,
		ProgramIDs:     programs,
	}
}

// BuildRequest builds the CreateSiderealTarget request for t owned by
// programID.
func BuildRequest(t catalog.Target, programID string) (graphql.Request, error) {
	if programID == "" {
		return graphql.Request{}, ErrEmptyProgramID
	}
	if t.Name == "" {
		return graphql.Request{}, fmt.Errorf("odb: target name is required")
	}
	return graphql.Request{
		Query:         CreateSiderealTargetMutation,
		OperationName: OperationName,
		Variables:     Variables{CreateSidereal: NewCreateSiderealInput(t, programID)},
	}, nil
}
