package vault

import (
	"context"
	"errors"
)

var ErrBiometricUnavailable = errors.New("biometric authentication is not available")

// Biometric is a platform authenticator used as a shortcut to PIN entry.
type Biometric interface {
	// Available reports whether hardware is present and enrolled.
	Available(ctx context.Context) bool
	// Authenticate prompts the user. Any non-nil error means not authenticated.
	Authenticate(ctx context.Context, reason string) error
}

// Unavailable is the Biometric used when the platform has no authenticator.
type Unavailable struct{}

func (Unavailable) Available(context.Context) bool { return false }

func (Unavailable) Authenticate(context.Context, string) error { return ErrBiometricUnavailable }

// Preferences exposes the biometric-unlock preference. *store.Store satisfies it.
type Preferences interface {
	BiometricEnabled() (bool, error)
}
