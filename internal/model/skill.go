package model

import "time"

// Skill is a named capability tag owned by the skill catalog.
type Skill struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultSkills seeds an empty catalog.
var DefaultSkills = []Skill{
	{Name: "Sales", Description: "Handles sales inquiries and new customer acquisition", IsActive: true},
	{Name: "Support", Description: "Provides general customer support and troubleshooting", IsActive: true},
	{Name: "Billing", Description: "Handles billing questions and payment issues", IsActive: true},
	{Name: "Technical", Description: "Provides technical support for complex issues", IsActive: true},
	{Name: "Retention", Description: "Handles customer retention and cancellation requests", IsActive: true},
}
