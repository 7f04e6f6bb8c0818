package guard

import "time"

// Status enumerates the duty states a guard can be in.
// Normalization guarantees every Guard carries one of these values.
type Status string

const (
	StatusAvailable     Status = "available"
	StatusResponding    Status = "responding"
	StatusPatrolling    Status = "patrolling"
	StatusInvestigating Status = "investigating"
	StatusBreak         Status = "break"
	StatusOffDuty       Status = "off_duty"
	StatusEmergency     Status = "emergency"
)

// Location is a geographic fix with an accuracy radius in meters.
// A zero Timestamp means the fix time was not reported.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics aggregates per-guard activity counters.
type Metrics struct {
	IncidentsResponded int     `json:"incidents_responded"`
	PatrolsCompleted   int     `json:"patrols_completed"`
	AvgResponseSeconds float64 `json:"avg_response_seconds"`
	HoursOnDuty        float64 `json:"hours_on_duty"`
}

// Guard is the canonical registry entity. Upstream systems report guards
// in varying shapes; Normalize converts any of them into this form.
type Guard struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Status     Status   `json:"status"`
	Location   Location `json:"location"`
	Building   string   `json:"building"`
	Zone       string   `json:"zone"`
	Badge      string   `json:"badge"`
	Shift      string   `json:"shift"`
	Department string   `json:"department"`
	Skills     []string `json:"skills"`
	Metrics    Metrics  `json:"metrics"`
}
