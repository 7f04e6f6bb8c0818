package guard

import (
	"reflect"
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"available", StatusAvailable},
		{"on_duty", StatusAvailable},
		{"ON_DUTY", StatusAvailable},
		{"dispatched", StatusResponding},
		{"patrol", StatusPatrolling},
		{"investigating", StatusInvestigating},
		{"rest", StatusBreak},
		{"sos", StatusEmergency},
		{"panic", StatusEmergency},
		{"offline", StatusOffDuty},
		{"xyz", StatusOffDuty},
		{"", StatusOffDuty},
		{"  Emergency  ", StatusEmergency},
	}
	for _, c := range cases {
		if got := NormalizeStatus(c.raw); got != c.want {
			t.Errorf("NormalizeStatus(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestNormalizeNameFallbacks(t *testing.T) {
	cases := []struct {
		name string
		rec  map[string]any
		want string
	}{
		{"explicit name", map[string]any{"name": "Alice"}, "Alice"},
		{"first and last", map[string]any{"firstName": "Jane", "lastName": "Doe"}, "Jane Doe"},
		{"first only", map[string]any{"firstName": "Jane"}, "Jane"},
		{"snake case", map[string]any{"first_name": "Jo", "last_name": "Park"}, "Jo Park"},
		{"nothing", map[string]any{}, "Unknown"},
		{"blank name falls through", map[string]any{"name": "  ", "firstName": "Jane", "lastName": "Doe"}, "Jane Doe"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Normalize(c.rec).Name; got != c.want {
				t.Errorf("Name = %q, want %q", got, c.want)
			}
		})
	}
}

func TestNormalizeLocationDefaults(t *testing.T) {
	g := Normalize(map[string]any{"id": "g1"})
	if g.Location.Latitude != 0 || g.Location.Longitude != 0 {
		t.Errorf("Location = %+v, want zero lat/lng", g.Location)
	}
	if g.Location.Accuracy != DefaultAccuracy {
		t.Errorf("Accuracy = %v, want %v", g.Location.Accuracy, DefaultAccuracy)
	}
}

func TestNormalizeNestedLocation(t *testing.T) {
	g := Normalize(map[string]any{
		"id": "g1",
		"location": map[string]any{
			"latitude":  float64(37.42),
			"longitude": float64(-122.08),
			"accuracy":  float64(5),
		},
	})
	if g.Location.Latitude != 37.42 || g.Location.Longitude != -122.08 || g.Location.Accuracy != 5 {
		t.Errorf("Location = %+v", g.Location)
	}
}

func TestNormalizeFlatLocationAndStringNumbers(t *testing.T) {
	g := Normalize(map[string]any{
		"id":  "g2",
		"lat": "40.7",
		"lng": "-74.0",
	})
	if g.Location.Latitude != 40.7 || g.Location.Longitude != -74.0 {
		t.Errorf("Location = %+v", g.Location)
	}
	if g.Location.Accuracy != DefaultAccuracy {
		t.Errorf("Accuracy = %v, want default", g.Location.Accuracy)
	}
}

func TestNormalizeIDFallbacks(t *testing.T) {
	cases := []struct {
		rec  map[string]any
		want string
	}{
		{map[string]any{"id": "a"}, "a"},
		{map[string]any{"guardId": "b"}, "b"},
		{map[string]any{"guard_id": "c"}, "c"},
		{map[string]any{"badge": "B-7"}, "B-7"},
		{map[string]any{"id": float64(42)}, "42"},
		{map[string]any{}, ""},
	}
	for _, c := range cases {
		if got := Normalize(c.rec).ID; got != c.want {
			t.Errorf("Normalize(%v).ID = %q, want %q", c.rec, got, c.want)
		}
	}
}

func TestNormalizeMetricsAndSkills(t *testing.T) {
	g := Normalize(map[string]any{
		"id":     "g3",
		"skills": []any{"first-aid", "k9"},
		"metrics": map[string]any{
			"incidentsResponded": float64(4),
			"patrolsCompleted":   float64(12),
			"avgResponseSeconds": float64(93.5),
			"hoursOnDuty":        float64(7.25),
		},
	})
	if !reflect.DeepEqual(g.Skills, []string{"first-aid", "k9"}) {
		t.Errorf("Skills = %v", g.Skills)
	}
	want := Metrics{IncidentsResponded: 4, PatrolsCompleted: 12, AvgResponseSeconds: 93.5, HoursOnDuty: 7.25}
	if g.Metrics != want {
		t.Errorf("Metrics = %+v, want %+v", g.Metrics, want)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	rec := map[string]any{
		"guardId":   "g9",
		"firstName": "Sam",
		"lastName":  "Lee",
		"status":    "DISPATCHED",
		"zone":      "east",
	}
	a := Normalize(rec)
	b := Normalize(rec)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Normalize not deterministic: %+v vs %+v", a, b)
	}
}

func TestNormalizeNilRecord(t *testing.T) {
	g := Normalize(nil)
	if g.Name != "Unknown" || g.Status != StatusOffDuty {
		t.Errorf("Normalize(nil) = %+v", g)
	}
}
