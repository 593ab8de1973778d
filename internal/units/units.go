// Package units converts the measurement encodings found in legacy word
// processor files to points, the unit used by the document sink.
package units

const (
	TwipsPerPoint  = 20.0
	TwipsPerInch   = 1440.0
	PointsPerInch  = 72.0
	fixed16Divisor = 65536.0
)

// Fixed16ToPoints converts a signed 16.16 fixed-point value to points.
func Fixed16ToPoints(raw int32) float64 {
	return float64(raw) / fixed16Divisor
}

// TwipsToPoints converts twentieths of a point to points.
func TwipsToPoints(twips int) float64 {
	return float64(twips) / TwipsPerPoint
}

// PointsToTwips converts points to twips, rounding to the nearest twip.
func PointsToTwips(pt float64) int {
	if pt < 0 {
		return int(pt*TwipsPerPoint - 0.5)
	}
	return int(pt*TwipsPerPoint + 0.5)
}

// TwipsToInches converts twips to inches.
func TwipsToInches(twips int) float64 {
	return float64(twips) / TwipsPerInch
}

// PointsToInches converts points to inches.
func PointsToInches(pt float64) float64 {
	return pt / PointsPerInch
}

// InchesToPoints converts inches to points.
func InchesToPoints(in float64) float64 {
	return in * PointsPerInch
}

// HalfPointsToPoints converts half points (Write's hps) to points.
func HalfPointsToPoints(hps int) float64 {
	return float64(hps) / 2
}
