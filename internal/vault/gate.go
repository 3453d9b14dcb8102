package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Mode is a state of the vault gate.
type Mode string

const (
	ModeAuth         Mode = "AUTH"
	ModeSetupCreate  Mode = "SETUP_CREATE"
	ModeSetupConfirm Mode = "SETUP_CONFIRM"
	ModeUnlocked     Mode = "UNLOCKED"
)

// Outcome is the result of a submitted PIN.
type Outcome int

const (
	// OutcomePending means fewer than PINLength digits have been entered.
	OutcomePending Outcome = iota
	// OutcomeConfirm means a new PIN was accepted and must be entered again.
	OutcomeConfirm
	// OutcomeMismatch means the confirmation differed; setup restarts.
	OutcomeMismatch
	// OutcomeWrongPIN means the PIN did not match the stored one.
	OutcomeWrongPIN
	// OutcomeUnlocked means the vault is open.
	OutcomeUnlocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeConfirm:
		return "confirm"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeWrongPIN:
		return "wrong pin"
	case OutcomeUnlocked:
		return "unlocked"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

var ErrWrongPIN = errors.New("wrong pin")

const biometricReason = "Unlock your private vault"

// Gate is the PIN state machine guarding the vault. It is safe for
// concurrent use.
type Gate struct {
	mu      sync.Mutex
	pins    *PINStore
	bio     Biometric
	prefs   Preferences
	mode    Mode
	buf     []byte
	pending string
}

// NewGate starts in AUTH when a PIN is stored and in SETUP_CREATE otherwise.
// A nil bio means Unavailable.
func NewGate(pins *PINStore, bio Biometric, prefs Preferences) (*Gate, error) {
	if bio == nil {
		bio = Unavailable{}
	}
	g := &Gate{pins: pins, bio: bio, prefs: prefs}
	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gate) reset() error {
	has, err := g.pins.HasPIN()
	if err != nil {
		return fmt.Errorf("check pin: %w", err)
	}
	g.buf = g.buf[:0]
	g.pending = ""
	if has {
		g.mode = ModeAuth
	} else {
		g.mode = ModeSetupCreate
	}
	return nil
}

func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Entered returns how many digits are buffered.
func (g *Gate) Entered() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.buf)
}

func (g *Gate) Unlocked() bool {
	return g.Mode() == ModeUnlocked
}

// Press appends a digit. The digit that completes the PIN submits it.
// Non-digits and presses while unlocked are ignored.
func (g *Gate) Press(d rune) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeUnlocked || d < '0' || d > '9' || len(g.buf) >= PINLength {
		return OutcomePending, nil
	}
	g.buf = append(g.buf, byte(d))
	if len(g.buf) < PINLength {
		return OutcomePending, nil
	}
	return g.submit()
}

func (g *Gate) Backspace() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.buf) > 0 {
		g.buf = g.buf[:len(g.buf)-1]
	}
}

func (g *Gate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buf = g.buf[:0]
}

// Submit evaluates the buffer. With fewer than PINLength digits it does nothing.
func (g *Gate) Submit() (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeUnlocked || len(g.buf) < PINLength {
		return OutcomePending, nil
	}
	return g.submit()
}

func (g *Gate) submit() (Outcome, error) {
	entry := string(g.buf)
	g.buf = g.buf[:0]

	switch g.mode {
	case ModeSetupCreate:
		g.pending = entry
		g.mode = ModeSetupConfirm
		return OutcomeConfirm, nil

	case ModeSetupConfirm:
		if entry != g.pending {
			g.pending = ""
			g.mode = ModeSetupCreate
			return OutcomeMismatch, nil
		}
		if err := g.pins.SetPIN(entry); err != nil {
			return OutcomePending, err
		}
		g.pending = ""
		g.mode = ModeUnlocked
		return OutcomeUnlocked, nil

	case ModeAuth:
		ok, err := g.pins.VerifyPIN(entry)
		if err != nil {
			return OutcomePending, err
		}
		if !ok {
			return OutcomeWrongPIN, nil
		}
		g.mode = ModeUnlocked
		return OutcomeUnlocked, nil
	}
	return OutcomePending, nil
}

// OfferBiometric reports whether a biometric prompt should be shown: the gate
// is in AUTH, the preference is on and the authenticator is available.
func (g *Gate) OfferBiometric(ctx context.Context) bool {
	if g.Mode() != ModeAuth {
		return false
	}
	if g.prefs != nil {
		enabled, err := g.prefs.BiometricEnabled()
		if err != nil || !enabled {
			return false
		}
	}
	return g.bio.Available(ctx)
}

// TryBiometric prompts for biometric authentication and unlocks on success.
// Any failure leaves the mode unchanged and the PIN pad as the fallback.
func (g *Gate) TryBiometric(ctx context.Context) (bool, error) {
	if !g.OfferBiometric(ctx) {
		return false, nil
	}
	if err := g.bio.Authenticate(ctx, biometricReason); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeAuth {
		return false, nil
	}
	g.buf = g.buf[:0]
	g.mode = ModeUnlocked
	return true, nil
}

// BeginChange starts the change-passcode flow. The current PIN must verify;
// then the stored PIN is removed and the gate moves to SETUP_CREATE. With no
// PIN stored it goes straight to SETUP_CREATE.
func (g *Gate) BeginChange(current string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	has, err := g.pins.HasPIN()
	if err != nil {
		return fmt.Errorf("check pin: %w", err)
	}
	if has {
		ok, err := g.pins.VerifyPIN(current)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWrongPIN
		}
		if err := g.pins.ResetPIN(); err != nil {
			return err
		}
	}
	g.buf = g.buf[:0]
	g.pending = ""
	g.mode = ModeSetupCreate
	return nil
}

// Lock closes the vault and clears any partial entry.
func (g *Gate) Lock() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reset()
}
