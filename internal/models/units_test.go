package models

import "testing"

// TestUnitRoundTrip verifies that every primary abbreviation maps to a
// canonical unit and back, for every goal type's closed set.
func TestUnitRoundTrip(t *testing.T) {
	for _, gt := range []GoalType{GoalTime, GoalDistance, GoalEnergy} {
		for _, u := range UnitsFor(gt) {
			abbr := Abbreviation(u)
			if got := CanonicalUnit(gt, abbr); got != u {
				t.Errorf("CanonicalUnit(%s, %q) = %q, want %q", gt, abbr, got, u)
			}
			if got := Abbreviation(CanonicalUnit(gt, abbr)); got != abbr {
				t.Errorf("Abbreviation(CanonicalUnit(%s, %q)) = %q", gt, abbr, got)
			}
		}
	}
}

// TestCanonicalUnitAliases verifies alias and case handling, including
// abbreviations whose meaning depends on the goal type.
func TestCanonicalUnitAliases(t *testing.T) {
	tests := []struct {
		goalType GoalType
		in       string
		want     Unit
	}{
		{GoalTime, "sec", UnitSeconds},
		{GoalTime, "H", UnitHours},
		{GoalTime, "m", UnitMinutes},
		{GoalTime, "minutes", UnitMinutes},
		{GoalDistance, "m", UnitMeters},
		{GoalDistance, "KM", UnitKilometers},
		{GoalDistance, "kilometers", UnitKilometers},
		{GoalDistance, " mi ", UnitMiles},
		{GoalEnergy, "kcal", UnitKilocalories},
		{GoalEnergy, "kj", UnitKilojoules},
	}
	for _, tt := range tests {
		if got := CanonicalUnit(tt.goalType, tt.in); got != tt.want {
			t.Errorf("CanonicalUnit(%s, %q) = %q, want %q", tt.goalType, tt.in, got, tt.want)
		}
	}
}

// TestCanonicalUnitFallback verifies the per-type default for unrecognized
// abbreviations and that open goals never carry a unit.
func TestCanonicalUnitFallback(t *testing.T) {
	tests := []struct {
		goalType GoalType
		want     Unit
	}{
		{GoalTime, UnitMinutes},
		{GoalDistance, UnitKilometers},
		{GoalEnergy, UnitKilocalories},
		{GoalOpen, ""},
	}
	for _, tt := range tests {
		if got := CanonicalUnit(tt.goalType, "furlongs"); got != tt.want {
			t.Errorf("CanonicalUnit(%s, furlongs) = %q, want %q", tt.goalType, got, tt.want)
		}
	}
}

// TestAbbreviationUnknown verifies unknown units pass through unchanged.
func TestAbbreviationUnknown(t *testing.T) {
	if got := Abbreviation("parsecs"); got != "parsecs" {
		t.Errorf("Abbreviation(parsecs) = %q", got)
	}
}

// TestConversions verifies the unit factors used by plan summaries.
func TestConversions(t *testing.T) {
	if got, ok := Seconds(1.5, UnitHours); !ok || got != 5400 {
		t.Errorf("Seconds(1.5 h) = %v, %v", got, ok)
	}
	if got, ok := Meters(5, UnitKilometers); !ok || got != 5000 {
		t.Errorf("Meters(5 km) = %v, %v", got, ok)
	}
	if _, ok := Meters(5, UnitMinutes); ok {
		t.Error("Meters accepted a time unit")
	}
	if got, ok := Kilocalories(300, UnitKilocalories); !ok || got != 300 {
		t.Errorf("Kilocalories(300 cal) = %v, %v", got, ok)
	}
}

// TestUnitCatalogDefaults verifies exactly one default per goal type.
func TestUnitCatalogDefaults(t *testing.T) {
	defaults := map[GoalType]int{}
	for _, e := range UnitCatalog() {
		if e.Default {
			defaults[e.GoalType]++
		}
	}
	for _, gt := range []GoalType{GoalTime, GoalDistance, GoalEnergy} {
		if defaults[gt] != 1 {
			t.Errorf("%s has %d defaults, want 1", gt, defaults[gt])
		}
	}
}
