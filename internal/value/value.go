// Package value estimates the cartographic value of scanned bodies.
//
// Values are approximations of first-discovery payouts taken from community
// data. A body's value depends only on its classification string and whether
// it has been surface mapped, so it can be recomputed at any time.
package value

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultValue is used for any classification missing from the tables.
	DefaultValue = 500

	// TerraformableMultiplier applies to the base value of terraformable planets.
	TerraformableMultiplier = 10.0

	// DSSMultiplier applies once a planet has been surface mapped.
	DSSMultiplier = 5.0

	// DefaultThreshold is the minimum system value worth caching.
	DefaultThreshold = 1_000
)

// Classification markers found in body type strings.
const (
	StarPrefix          = "Star Class "
	AsteroidCluster     = "Asteroid Cluster"
	TerraformableMarker = "Terraformable"
	terraformableSuffix = " (Terraformable)"
)

// planetValues is keyed by lower-cased planet class.
var planetValues = lowerKeys(map[string]int{
	"Earthlike body":                    1_200_000,
	"Earthlike World":                   1_200_000,
	"Water world":                       600_000,
	"Ammonia world":                     400_000,
	"Rocky body":                        130_000,
	"Metal rich body":                   31_000,
	"High metal content body":           14_000,
	"Class I gas giant":                 3_800,
	"Class II gas giant":                28_000,
	"Class III gas giant":               1_000,
	"Class IV gas giant":                1_100,
	"Class V gas giant":                 1_000,
	"Gas giant with water based life":   900_000,
	"Gas giant with ammonia based life": 900_000,
	"Helium rich gas giant":             900,
	"Helium gas giant":                  900,
	"Water giant":                       670,
	"Icy body":                          500,
	"Rocky ice body":                    500,
})

// starValues is keyed by lower-cased star class code.
var starValues = lowerKeys(map[string]int{
	"O": 4_000, "B": 3_000, "A": 2_500, "F": 2_000, "G": 1_500, "K": 1_200, "M": 1_000,
	"L": 2_500, "T": 2_500, "Y": 2_500, "TTS": 2_000, "AeBe": 3_500,
	"W": 15_000, "WN": 15_000, "WNC": 15_000, "WC": 15_000, "WO": 15_000,
	"MS": 20_000, "S": 20_000,
	"C": 3_000, "CN": 3_000, "CJ": 3_000, "CH": 3_000, "CHd": 3_000,
	"N": 22_628, "H": 1_200, "X": 30_000, "SupermassiveBlackHole": 40_000,
	"D": 14_000, "DA": 14_000, "DAB": 14_000, "DAO": 14_000, "DAZ": 14_000,
	"DAV": 14_000, "DB": 14_000, "DBZ": 14_000, "DBV": 14_000, "DO": 14_000,
	"DOV": 14_000, "DQ": 14_000, "DC": 14_000, "DCV": 14_000, "DX": 14_000,
})

func lowerKeys(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// BodyValue returns the estimated value of a body with the given type string.
// Asteroid clusters are worthless, stars ignore hasDSS, and unknown types
// fall back to DefaultValue.
func BodyValue(bodyType string, hasDSS bool) int {
	if strings.Contains(bodyType, AsteroidCluster) {
		return 0
	}

	if code, ok := strings.CutPrefix(bodyType, StarPrefix); ok {
		return lookup(starValues, strings.TrimSpace(code))
	}

	v := float64(lookup(planetValues, bodyType))
	if IsTerraformable(bodyType) {
		v = float64(lookup(planetValues, baseClass(bodyType))) * TerraformableMultiplier
	}
	if hasDSS {
		v *= DSSMultiplier
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

// IsTerraformable reports whether a body type carries the terraformable
// marker. Case is ignored.
func IsTerraformable(bodyType string) bool {
	return strings.Contains(strings.ToLower(bodyType), strings.ToLower(TerraformableMarker))
}

// baseClass strips the terraformable marker, lower-casing the result.
func baseClass(bodyType string) string {
	lower := strings.ToLower(bodyType)
	lower = strings.Replace(lower, strings.ToLower(terraformableSuffix), "", 1)
	lower = strings.Replace(lower, strings.ToLower(TerraformableMarker), "", 1)
	return strings.TrimSpace(lower)
}

func lookup(table map[string]int, key string) int {
	if v, ok := table[strings.ToLower(key)]; ok {
		return v
	}
	return DefaultValue
}

// Valued is anything carrying an already computed value.
type Valued interface {
	EstimatedValue() int
}

// SystemValue sums the stored values of bodies. It does not recompute them.
func SystemValue[B Valued](bodies []B) int {
	total := 0
	for _, b := range bodies {
		total += b.EstimatedValue()
	}
	return total
}

// IsValuable reports whether a system total reaches threshold.
func IsValuable(total, threshold int) bool {
	return total >= threshold
}

// FormatCredits renders a compact credit amount such as "1.2M cr".
func FormatCredits(v int) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM cr", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK cr", float64(v)/1_000)
	default:
		return fmt.Sprintf("%d cr", v)
	}
}

// Credits renders a full credit amount with thousands separators.
func Credits(v int) string {
	return humanize.Comma(int64(v)) + " cr"
}
