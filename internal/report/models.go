package report

import (
	"fmt"
	"net/url"
	"time"
)

// Status represents the lifecycle state of an incident report
type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

// AllStatuses returns all report lifecycle states
func AllStatuses() []Status {
	return []Status{StatusPending, StatusValidated, StatusRejected}
}

// Valid reports whether s is a known lifecycle state
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions
func (s Status) Terminal() bool {
	return s == StatusValidated || s == StatusRejected
}

// IncidentReport is a community-submitted safety incident subject to moderation.
// JSON field names match the historical document schema so existing clients
// keep working unchanged.
type IncidentReport struct {
	ID               string     `json:"id"`
	IncidentType     string     `json:"incidentType,omitempty"`
	Description      string     `json:"description,omitempty"`
	SeverityReported int        `json:"severityReported,omitempty"`
	Images           []string   `json:"images,omitempty"`
	LocationName     string     `json:"locationName,omitempty"`
	Location         *GeoPoint  `json:"location,omitempty"`
	SubmittedAt      FlexTime   `json:"submittedAt"`
	Status           Status     `json:"status"`
	ValidatedBy      string     `json:"validatedBy,omitempty"` // set on both approve and reject (historical naming)
	ValidatedAt      *time.Time `json:"validatedAt,omitempty"`
	AdminSeverity    int        `json:"adminSeverity,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`
}

// MapURL returns an embeddable map viewer URL for the report's location.
// Coordinates win; a free-text place query from LocationName is the fallback.
// Returns "" when the report carries no usable location.
func (r *IncidentReport) MapURL() string {
	if r.Location != nil {
		return fmt.Sprintf("https://maps.google.com/maps?q=%v,%v&z=15&output=embed",
			r.Location.Latitude, r.Location.Longitude)
	}
	if r.LocationName != "" {
		return "https://maps.google.com/maps?q=" + url.QueryEscape(r.LocationName) + "&z=13&output=embed"
	}
	return ""
}

// ActionType represents a type of administrative action
type ActionType string

const (
	ActionApproveIncident ActionType = "approve_incident"
	ActionRejectIncident  ActionType = "reject_incident"
)

// AuditEntry is one immutable record of an administrative action.
// Entries are only ever appended and read, never updated or deleted.
type AuditEntry struct {
	ID        string            `json:"id"`
	AdminID   string            `json:"adminId"`
	Action    ActionType        `json:"actionType"`
	TargetID  string            `json:"targetId"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// SafeZoneType values accepted for safe zone records
var SafeZoneTypes = []string{"shelter", "police", "hospital", "community"}

// ValidSafeZoneType reports whether t is an accepted safe zone category
func ValidSafeZoneType(t string) bool {
	for _, z := range SafeZoneTypes {
		if z == t {
			return true
		}
	}
	return false
}

// SafeZone is an independently managed shelter/resource location.
// Unrelated to moderation state; plain CRUD.
type SafeZone struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Contact   string    `json:"contact"`
	Location  *GeoPoint `json:"location,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// SystemSettings holds the global tuning parameters, stored under the fixed
// key "global". Field names match the historical document schema.
type SystemSettings struct {
	CommunityRadius           float64 `json:"community_radius"`
	RiskDecayDays             float64 `json:"risk_decay_days"`
	MinSeverityAlertThreshold float64 `json:"min_severity_alert_threshold"`
}

// DefaultSettings returns the settings used before an admin has saved any.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		CommunityRadius:           5,
		RiskDecayDays:             30,
		MinSeverityAlertThreshold: 3,
	}
}

// Validate checks the settings ranges
func (s SystemSettings) Validate() error {
	if s.CommunityRadius < 1 {
		return fmt.Errorf("%w: community_radius must be at least 1", ErrInvalidInput)
	}
	if s.RiskDecayDays < 1 {
		return fmt.Errorf("%w: risk_decay_days must be at least 1", ErrInvalidInput)
	}
	if s.MinSeverityAlertThreshold < 1 || s.MinSeverityAlertThreshold > 5 {
		return fmt.Errorf("%w: min_severity_alert_threshold must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}
