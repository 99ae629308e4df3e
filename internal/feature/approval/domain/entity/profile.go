// Package entity defines the domain entities for the approval feature.
package entity

import "time"

// Profile is the application-side record of a hosted-auth user.
// New accounts start unapproved; an administrator flips Approved via a signed link.
type Profile struct {
	// ID is the hosted-auth user id (the JWT "sub" claim).
	ID string `json:"id"`

	Email string `json:"email"`

	Approved bool `json:"approved"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentUser is the read model of the signed-in user served to the dashboard.
type CurrentUser struct {
	ID       string
	Email    string
	Approved bool
}

// ApprovalRequest is the message sent to the administrator when a user signs up.
type ApprovalRequest struct {
	To           string    `json:"to"`
	UserEmail    string    `json:"userEmail"`
	UserID       string    `json:"userId"`
	ApprovalLink string    `json:"approvalLink"`
	SignupDate   time.Time `json:"signupDate"`
}
