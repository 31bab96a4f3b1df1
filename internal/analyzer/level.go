package analyzer

import "math"

// DBFloor is the sentinel level assigned to magnitudes at or below digital
// silence, so that a log of zero never leaks infinity into comparisons.
const DBFloor = -200.0

// dbFloorLinear is the linear magnitude below which a level is reported as
// DBFloor.
const dbFloorLinear = 1e-10

// LinearToDB converts a linear magnitude to decibels, clamping digital
// silence to DBFloor.
func LinearToDB(linear float64) float64 {
	if linear <= dbFloorLinear {
		return DBFloor
	}
	return 20.0 * math.Log10(linear)
}

// DBToLinear converts a level in decibels to a linear magnitude.
func DBToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}
