// Package odb submits sidereal targets to the observing database through the
// CreateSiderealTarget GraphQL mutation.
package odb

// OperationName names the mutation in every request.
const OperationName = "CreateSiderealTarget"

// CreateSiderealTargetMutation is the mutation document sent for each target.
// It requests the created target back with output-specific units (km/s for
// radial velocity, µas for parallax).
const CreateSiderealTargetMutation = `
mutation CreateSiderealTarget($createSidereal: CreateSiderealInput!) {
  createSiderealTarget(input: $createSidereal) {
    id
    name
    tracking {
      __typename
      ... on Sidereal {
        coordinates {
          ra  { hms }
          dec { dms }
        }
        epoch
        properMotion {
          ra { milliarcsecondsPerYear }
          dec { milliarcsecondsPerYear }
        }
        radialVelocity { kilometersPerSecond }
        parallax { microarcseconds }
      }
    }
    magnitudes {
      value
      band
      system
    }
  }
}
`
