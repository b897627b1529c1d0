package model

import (
	"errors"
	"strings"
)

// Category is the incident category used for runbook retrieval.
type Category string

const (
	CategoryLatency Category = "latency"
	CategoryStorage Category = "storage"
	CategoryAuth    Category = "auth"
	CategoryUnknown Category = "unknown"
)

// NormalizeCategory maps an input string to a known category.
// Empty or unrecognized values fall back to unknown.
func NormalizeCategory(s string) Category {
	switch Category(s) {
	case CategoryLatency, CategoryStorage, CategoryAuth, CategoryUnknown:
		return Category(s)
	default:
		return CategoryUnknown
	}
}

// ReporterRole identifies who filed the incident.
type ReporterRole string

const (
	RoleSRE       ReporterRole = "SRE"
	RoleDeveloper ReporterRole = "Developer"
	RoleManager   ReporterRole = "Manager"
	RoleOther     ReporterRole = "Other"
)

// NormalizeRole maps an input string to a known reporter role.
// Empty or unrecognized values fall back to Other.
func NormalizeRole(s string) ReporterRole {
	switch ReporterRole(s) {
	case RoleSRE, RoleDeveloper, RoleManager, RoleOther:
		return ReporterRole(s)
	default:
		return RoleOther
	}
}

// ErrIncidentTooShort rejects incident reports below the minimum length.
var ErrIncidentTooShort = errors.New("incident_text must be at least 10 characters")

// IncidentRequest is the input to incident evaluation.
type IncidentRequest struct {
	IncidentText string       `json:"incident_text"`
	Category     Category     `json:"category,omitempty"`
	ReporterRole ReporterRole `json:"reporter_role,omitempty"`
}

// Normalize trims the incident text and defaults optional fields.
// Returns ErrIncidentTooShort if the trimmed text is under 10 characters.
func (r *IncidentRequest) Normalize() error {
	r.IncidentText = strings.TrimSpace(r.IncidentText)
	if len(r.IncidentText) < 10 {
		return ErrIncidentTooShort
	}
	r.Category = NormalizeCategory(string(r.Category))
	r.ReporterRole = NormalizeRole(string(r.ReporterRole))
	return nil
}
