// Package model defines the domain types shared across the scoring service.
package model

import "time"

// Intent is the categorical purchase-likelihood label assigned to a lead.
type Intent string

const (
	IntentHigh   Intent = "High"
	IntentMedium Intent = "Medium"
	IntentLow    Intent = "Low"
)

// Lead is a sales contact record to be scored. All fields are optional;
// the engine reads them defensively and never mutates a lead.
type Lead struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	Company     string `json:"company,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	LinkedInBio string `json:"linkedin_bio,omitempty"`
}

// Offer describes the product or service leads are evaluated against.
type Offer struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	ValueProps    []string `json:"value_props"`
	IdealUseCases []string `json:"ideal_use_cases"`
}

// ScoreResult is the outcome of scoring one lead against one offer.
// One result is produced per input lead, in input order.
type ScoreResult struct {
	Intent    Intent `json:"intent"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// StoredResult is a persisted ScoreResult joined with its lead.
type StoredResult struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	OfferID   string    `json:"offer_id"`
	Lead      Lead      `json:"lead"`
	Intent    Intent    `json:"intent"`
	Score     int       `json:"score"`
	Reasoning string    `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
}
