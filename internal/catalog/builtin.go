package catalog

// builtinTargets is the Orion belt and shoulder set loaded into program p-2.
var builtinTargets = []Target{
	{
		Name:  "Bellatrix",
		RA:    RA{HMS: "05:25:07.863"},
		Dec:   Dec{DMS: "06:20:58.93"},
		Epoch: "J2000.000",
		ProperMotion: ProperMotion{
			RA:  AngularRate{MilliarcsecondsPerYear: -8.11},
			Dec: AngularRate{MilliarcsecondsPerYear: -12.88},
		},
		RadialVelocity: RadialVelocity{MetersPerSecond: 18287},
		Parallax:       Parallax{Milliarcseconds: 12.92},
		Magnitudes: []Magnitude{
			{Band: "R", Value: 1.73, System: "VEGA"},
			{Band: "V", Value: 1.64, System: "VEGA"},
		},
	},
	{
		Name:  "Alnilam",
		RA:    RA{HMS: "05:36:12.813"},
		Dec:   Dec{DMS: "-01:12:06.91"},
		Epoch: "J2000.000",
		ProperMotion: ProperMotion{
			RA:  AngularRate{MilliarcsecondsPerYear: 1.44},
			Dec: AngularRate{MilliarcsecondsPerYear: -0.78},
		},
		RadialVelocity: RadialVelocity{MetersPerSecond: 27280},
		Parallax:       Parallax{Milliarcseconds: 1.65},
		Magnitudes: []Magnitude{
			{Band: "R", Value: 1.76, System: "VEGA"},
			{Band: "V", Value: 1.69, System: "VEGA"},
		},
	},
	{
		Name:  "Alnitak",
		RA:    RA{HMS: "05:40:45.527"},
		Dec:   Dec{DMS: "-01:56:33.26"},
		Epoch: "J2000.000",
		ProperMotion: ProperMotion{
			RA:  AngularRate{MilliarcsecondsPerYear: 3.19},
			Dec: AngularRate{MilliarcsecondsPerYear: 2.03},
		},
		RadialVelocity: RadialVelocity{MetersPerSecond: 18587},
		Parallax:       Parallax{Milliarcseconds: 4.43},
		Magnitudes: []Magnitude{
			{Band: "R", Value: 1.85, System: "VEGA"},
			{Band: "V", Value: 1.77, System: "VEGA"},
		},
	},
	{
		Name:  "Saiph",
		RA:    RA{HMS: "05:47:45.389"},
		Dec:   Dec{DMS: "-09:40:10.58"},
		Epoch: "J2000.000",
		ProperMotion: ProperMotion{
			RA:  AngularRate{MilliarcsecondsPerYear: 1.46},
			Dec: AngularRate{MilliarcsecondsPerYear: -1.28},
		},
		RadialVelocity: RadialVelocity{MetersPerSecond: 20385},
		Parallax:       Parallax{Milliarcseconds: 5.04},
		Magnitudes: []Magnitude{
			{Band: "R", Value: 2.09, System: "VEGA"},
			{Band: "V", Value: 2.06, System: "VEGA"},
		},
	},
}

// Builtin returns the static target catalog in load order. Each call returns
// fresh copies, so callers may modify the result freely.
func Builtin() []Target {
	out := make([]Target, len(builtinTargets))
	for i, t := range builtinTargets {
		out[i] = t.Clone()
	}
	return out
}
