// Package usecase implements account approval and the approved-user read model.
package usecase

import "errors"

var (
	// ErrMissingParameters is returned when the approval link lacks userId or token.
	ErrMissingParameters = errors.New("missing parameters")

	// ErrInvalidToken is returned when the token is not HMAC-SHA256(secret, userId).
	ErrInvalidToken = errors.New("invalid token")

	// ErrProfileNotFound is returned when no user_profiles row exists for the id.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNotApproved is returned when an unapproved user calls a gated endpoint.
	ErrNotApproved = errors.New("account pending approval")

	// ErrSecretNotConfigured is returned when APPROVAL_SECRET is empty; approval links are neither issued nor accepted.
	ErrSecretNotConfigured = errors.New("approval secret not configured")

	// ErrNotifierDisabled is returned by a notifier with no destination configured.
	ErrNotifierDisabled = errors.New("approval notifier not configured")
)
