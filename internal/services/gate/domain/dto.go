package domain

import "time"

// RegisterInput is the enrollment request body
type RegisterInput struct {
	ID     string  `json:"id" validate:"required,max=64,participant_id" example:"V001"`
	Name   string  `json:"name" validate:"required,max=120" example:"Alice"`
	Secret *string `json:"secret,omitempty" validate:"omitempty,min=4,max=72" example:"abc123XY"`
}

// RegisterOutput is returned once; Secret is never shown again
type RegisterOutput struct {
	Class  Class  `json:"class"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// LoginInput is the authentication request body
type LoginInput struct {
	ID     string `json:"id" validate:"required,max=64" example:"V001"`
	Secret string `json:"secret" validate:"required,max=128" example:"abc123XY"`
}

// LoginOutput carries the verdict and, on success, an admission ticket
type LoginOutput struct {
	Reason    Reason     `json:"reason"`
	Detail    string     `json:"detail,omitempty"`
	Ticket    string     `json:"ticket,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Redirect  string     `json:"redirect,omitempty"`
}

// Page is the body of a protected landing route
type Page struct {
	Page        string `json:"page"`
	Class       Class  `json:"class"`
	Participant string `json:"participant"`
}
