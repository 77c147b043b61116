// Package catalog holds the sidereal target records loaded into the
// observing database.
package catalog

// RA is a right ascension in sexagesimal hours.
type RA struct {
	HMS string `json:"hms" yaml:"hms"`
}

// Dec is a declination in sexagesimal degrees.
type Dec struct {
	DMS string `json:"dms" yaml:"dms"`
}

// AngularRate is one proper motion component.
type AngularRate struct {
	MilliarcsecondsPerYear float64 `json:"milliarcsecondsPerYear" yaml:"milliarcsecondsPerYear"`
}

// ProperMotion carries the RA and Dec proper motion components.
type ProperMotion struct {
	RA  AngularRate `json:"ra" yaml:"ra"`
	Dec AngularRate `json:"dec" yaml:"dec"`
}

// RadialVelocity is a line-of-sight velocity.
type RadialVelocity struct {
	MetersPerSecond float64 `json:"metersPerSecond" yaml:"metersPerSecond"`
}

// Parallax is an annual parallax angle.
type Parallax struct {
	Milliarcseconds float64 `json:"milliarcseconds" yaml:"milliarcseconds"`
}

// Magnitude is a brightness measurement in one photometric band.
type Magnitude struct {
	Band   string  `json:"band" yaml:"band"`
	Value  float64 `json:"value" yaml:"value"`
	System string  `json:"system" yaml:"system"`
}

// Target is a sidereal target record. ProgramIDs is empty for catalog
// entries; the owning program is attached at submission time.
type Target struct {
	Name           string         `json:"name" yaml:"name"`
	RA             RA             `json:"ra" yaml:"ra"`
	Dec            Dec            `json:"dec" yaml:"dec"`
	Epoch          string         `json:"epoch" yaml:"epoch"`
	ProperMotion   ProperMotion   `json:"properMotion" yaml:"properMotion"`
	RadialVelocity RadialVelocity `json:"radialVelocity" yaml:"radialVelocity"`
	Parallax       Parallax       `json:"parallax" yaml:"parallax"`
	Magnitudes     []Magnitude    `json:"magnitudes" yaml:"magnitudes"`
	ProgramIDs     []string       `json:"programIds,omitempty" yaml:"programIds,omitempty"`
}

// Clone returns a deep copy of t.
func (t Target) Clone() Target {
	c := t
	if t.Magnitudes != nil {
		c.Magnitudes = append([]Magnitude(nil), t.Magnitudes...)
	}
	if t.ProgramIDs != nil {
		c.ProgramIDs = append([]string(nil), t.ProgramIDs...)
	}
	return c
}
