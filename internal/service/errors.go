package service

import "errors"

var (
	// ErrUnauthenticated means no verified user identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInviteValidation wraps infrastructure failures while looking up an
	// invite. It is not a verdict on the code; the request may be retried.
	ErrInviteValidation = errors.New("invite validation failed")
	// ErrInviteConsume wraps infrastructure failures while consuming an
	// invite. Nothing was recorded unless the store committed.
	ErrInviteConsume = errors.New("invite consumption failed")

	ErrIdentityAlreadyExists = errors.New("identity already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInviteCodeRequired    = errors.New("invite code required")
	ErrInviteCodeInvalid     = errors.New("invite code invalid")
	ErrRefreshTokenInvalid   = errors.New("refresh token invalid or revoked")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserDisabled          = errors.New("user is disabled or banned")
)
