package models

import "strings"

// GoalType is the kind of target a goal measures.
type GoalType string

const (
	GoalTime     GoalType = "time"
	GoalDistance GoalType = "distance"
	GoalEnergy   GoalType = "energy"
	GoalOpen     GoalType = "open"
)

// Valid reports whether g is a known goal type.
func (g GoalType) Valid() bool {
	switch g {
	case GoalTime, GoalDistance, GoalEnergy, GoalOpen:
		return true
	}
	return false
}

// Unit is a canonical unit identifier as stored in plans.
type Unit string

const (
	UnitSeconds      Unit = "seconds"
	UnitMinutes      Unit = "minutes"
	UnitHours        Unit = "hours"
	UnitMeters       Unit = "meters"
	UnitKilometers   Unit = "kilometers"
	UnitMiles        Unit = "miles"
	UnitYards        Unit = "yards"
	UnitFeet         Unit = "feet"
	UnitKilocalories Unit = "kilocalories"
	UnitKilojoules   Unit = "kilojoules"
)

type unitEntry struct {
	unit    Unit
	abbr    string
	aliases []string
	factor  float64 // to seconds, meters, or kilocalories
}

// unitTable is the closed unit set per goal type, in display order.
// The first entry of each type is not necessarily the default; see defaultUnits.
var unitTable = map[GoalType][]unitEntry{
	GoalTime: {
		{unit: UnitSeconds, abbr: "s", aliases: []string{"sec", "secs"}, factor: 1},
		{unit: UnitMinutes, abbr: "min", aliases: []string{"mins", "m"}, factor: 60},
		{unit: UnitHours, abbr: "hr", aliases: []string{"h", "hrs"}, factor: 3600},
	},
	GoalDistance: {
		{unit: UnitMeters, abbr: "m", aliases: []string{"meter"}, factor: 1},
		{unit: UnitKilometers, abbr: "km", aliases: []string{"kms", "kilometer"}, factor: 1000},
		{unit: UnitMiles, abbr: "mi", aliases: []string{"mile"}, factor: 1609.344},
		{unit: UnitYards, abbr: "yd", aliases: []string{"yds", "yard"}, factor: 0.9144},
		{unit: UnitFeet, abbr: "ft", aliases: []string{"foot"}, factor: 0.3048},
	},
	GoalEnergy: {
		{unit: UnitKilocalories, abbr: "cal", aliases: []string{"kcal", "calories"}, factor: 1},
		{unit: UnitKilojoules, abbr: "kJ", aliases: []string{"kj"}, factor: 1 / 4.184},
	},
}

// defaultUnits is the fallback for abbreviations outside a type's closed set.
var defaultUnits = map[GoalType]Unit{
	GoalTime:     UnitMinutes,
	GoalDistance: UnitKilometers,
	GoalEnergy:   UnitKilocalories,
}

// CanonicalUnit maps a user-facing abbreviation to the canonical unit for
// the given goal type. Matching is case-insensitive and also accepts the
// canonical name itself. Unrecognized input falls back to the type default
// (minutes, kilometers, kilocalories); open goals always map to "".
//
// Alias matching is scoped to the goal type, so "m" is minutes for a time
// goal and meters for a distance goal.
func CanonicalUnit(goalType GoalType, abbr string) Unit {
	entries, ok := unitTable[goalType]
	if !ok {
		return ""
	}
	a := strings.TrimSpace(abbr)

	// Exact primary abbreviations and canonical names win over aliases.
	for _, e := range entries {
		if a == e.abbr || strings.EqualFold(a, string(e.unit)) {
			return e.unit
		}
	}
	for _, e := range entries {
		if strings.EqualFold(a, e.abbr) {
			return e.unit
		}
		for _, alias := range e.aliases {
			if strings.EqualFold(a, alias) {
				return e.unit
			}
		}
	}
	return defaultUnits[goalType]
}

// Abbreviation maps a canonical unit to its primary display abbreviation.
// Units outside the closed set are returned unchanged.
func Abbreviation(u Unit) string {
	if e, ok := lookupUnit(u); ok {
		return e.abbr
	}
	return string(u)
}

// UnitsFor returns the closed unit set for a goal type in display order.
func UnitsFor(goalType GoalType) []Unit {
	entries := unitTable[goalType]
	units := make([]Unit, 0, len(entries))
	for _, e := range entries {
		units = append(units, e.unit)
	}
	return units
}

// GoalTypeOf returns the goal type a canonical unit belongs to, or "" if unknown.
func GoalTypeOf(u Unit) GoalType {
	for gt, entries := range unitTable {
		for _, e := range entries {
			if e.unit == u {
				return gt
			}
		}
	}
	return ""
}

// UnitCatalogEntry describes one unit for pickers and tool clients.
type UnitCatalogEntry struct {
	GoalType     GoalType `json:"goal_type"`
	Unit         Unit     `json:"unit"`
	Abbreviation string   `json:"abbreviation"`
	Default      bool     `json:"default"`
}

// UnitCatalog lists every unit in the closed set, grouped by goal type.
func UnitCatalog() []UnitCatalogEntry {
	var out []UnitCatalogEntry
	for _, gt := range []GoalType{GoalTime, GoalDistance, GoalEnergy} {
		for _, e := range unitTable[gt] {
			out = append(out, UnitCatalogEntry{
				GoalType:     gt,
				Unit:         e.unit,
				Abbreviation: e.abbr,
				Default:      defaultUnits[gt] == e.unit,
			})
		}
	}
	return out
}

// Seconds converts a time quantity to seconds.
func Seconds(value float64, u Unit) (float64, bool) {
	return convert(value, u, GoalTime)
}

// Meters converts a distance quantity to meters.
func Meters(value float64, u Unit) (float64, bool) {
	return convert(value, u, GoalDistance)
}

// Kilocalories converts an energy quantity to kilocalories.
func Kilocalories(value float64, u Unit) (float64, bool) {
	return convert(value, u, GoalEnergy)
}

func convert(value float64, u Unit, want GoalType) (float64, bool) {
	for _, e := range unitTable[want] {
		if e.unit == u {
			return value * e.factor, true
		}
	}
	return 0, false
}

func lookupUnit(u Unit) (unitEntry, bool) {
	for _, entries := range unitTable {
		for _, e := range entries {
			if e.unit == u {
				return e, true
			}
		}
	}
	return unitEntry{}, false
}
