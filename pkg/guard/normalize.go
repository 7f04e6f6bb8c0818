package guard

import (
	"strconv"
	"strings"
)

// DefaultAccuracy is assumed when an upstream record carries a position
// without an accuracy radius.
const DefaultAccuracy = 10

// statusAliases maps upstream status spellings to canonical values.
// Lookup is case-insensitive; anything absent resolves to StatusOffDuty.
var statusAliases = map[string]Status{
	"available":     StatusAvailable,
	"on_duty":       StatusAvailable,
	"onduty":        StatusAvailable,
	"active":        StatusAvailable,
	"responding":    StatusResponding,
	"dispatched":    StatusResponding,
	"patrolling":    StatusPatrolling,
	"patrol":        StatusPatrolling,
	"investigating": StatusInvestigating,
	"break":         StatusBreak,
	"rest":          StatusBreak,
	"off_duty":      StatusOffDuty,
	"offduty":       StatusOffDuty,
	"offline":       StatusOffDuty,
	"emergency":     StatusEmergency,
	"sos":           StatusEmergency,
	"panic":         StatusEmergency,
}

// NormalizeStatus resolves an upstream status string to a canonical Status.
func NormalizeStatus(raw string) Status {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusOffDuty
}

// Normalize converts an arbitrary upstream record into a canonical Guard.
// Upstream field names vary between registries, so each canonical field is
// resolved through an ordered fallback list and missing or malformed
// values fall back to documented defaults. Normalize is pure and never
// fails; a nil record yields the default Guard.
func Normalize(rec map[string]any) Guard {
	g := Guard{
		ID:         stringField(rec, "id", "guardId", "guard_id"),
		Status:     NormalizeStatus(stringField(rec, "status")),
		Building:   stringField(rec, "building", "site"),
		Zone:       stringField(rec, "zone", "assignedZone", "assigned_zone"),
		Badge:      stringField(rec, "badge", "badgeNumber", "badge_number"),
		Shift:      stringField(rec, "shift"),
		Department: stringField(rec, "department", "dept"),
		Skills:     stringsField(rec, "skills", "certifications"),
	}
	if g.ID == "" {
		g.ID = g.Badge
	}

	g.Name = stringField(rec, "name", "fullName", "full_name")
	if g.Name == "" {
		first := stringField(rec, "firstName", "first_name")
		last := stringField(rec, "lastName", "last_name")
		g.Name = strings.TrimSpace(first + " " + last)
	}
	if g.Name == "" {
		g.Name = "Unknown"
	}

	// Position may be flat on the record or nested under "location".
	loc := rec
	if sub, ok := rec["location"].(map[string]any); ok {
		loc = sub
	}
	g.Location = Location{
		Latitude:  numberField(loc, 0, "latitude", "lat"),
		Longitude: numberField(loc, 0, "longitude", "lng", "lon"),
		Accuracy:  numberField(loc, DefaultAccuracy, "accuracy"),
	}

	if sub, ok := rec["metrics"].(map[string]any); ok {
		g.Metrics = Metrics{
			IncidentsResponded: int(numberField(sub, 0, "incidentsResponded", "incidents_responded")),
			PatrolsCompleted:   int(numberField(sub, 0, "patrolsCompleted", "patrols_completed")),
			AvgResponseSeconds: numberField(sub, 0, "avgResponseSeconds", "avg_response_seconds"),
			HoursOnDuty:        numberField(sub, 0, "hoursOnDuty", "hours_on_duty"),
		}
	}

	return g
}

// stringField returns the first non-empty string value among keys.
// Numeric values are formatted rather than discarded since some
// registries report badge and id fields as numbers.
func stringField(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// numberField returns the first numeric value among keys, accepting
// float64, int, and numeric strings. def is returned when none match.
func numberField(rec map[string]any, def float64, keys ...string) float64 {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return def
}

// stringsField returns the first string-slice value among keys.
// JSON decoding yields []any, so both element shapes are handled.
func stringsField(rec map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case []string:
			if len(v) > 0 {
				return v
			}
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}
