package vault

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// PINKey is the secret store entry holding the PIN hash.
	PINKey = "bondvault_secure_pin"

	PINLength = 4

	saltLen    = 16
	hashLen    = 32
	hashScheme = "argon2id"
)

var (
	ErrInvalidPIN  = errors.New("pin must be exactly 4 digits")
	ErrCorruptHash = errors.New("stored pin hash is malformed")
)

// ValidPIN reports whether pin is exactly PINLength ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func derive(pin string, salt []byte) []byte {
	return argon2.IDKey([]byte(pin), salt, 1, 64*1024, 4, hashLen)
}

// PINStore persists the vault PIN as a salted argon2id hash.
type PINStore struct {
	secrets SecretStore
}

func NewPINStore(secrets SecretStore) *PINStore {
	return &PINStore{secrets: secrets}
}

func (p *PINStore) HasPIN() (bool, error) {
	_, ok, err := p.secrets.Get(PINKey)
	return ok, err
}

func (p *PINStore) SetPIN(pin string) error {
	if !ValidPIN(pin) {
		return ErrInvalidPIN
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	enc := base64.RawStdEncoding
	value := hashScheme + "$" + enc.EncodeToString(salt) + "$" + enc.EncodeToString(derive(pin, salt))
	if err := p.secrets.Set(PINKey, value); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}
	return nil
}

// VerifyPIN compares pin against the stored hash in constant time. It reports
// false when no PIN is stored.
func (p *PINStore) VerifyPIN(pin string) (bool, error) {
	value, ok, err := p.secrets.Get(PINKey)
	if err != nil {
		return false, fmt.Errorf("load pin: %w", err)
	}
	if !ok {
		return false, nil
	}

	parts := strings.Split(value, "$")
	if len(parts) != 3 || parts[0] != hashScheme {
		return false, ErrCorruptHash
	}
	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[1])
	if err != nil {
		return false, ErrCorruptHash
	}
	want, err := enc.DecodeString(parts[2])
	if err != nil {
		return false, ErrCorruptHash
	}
	got := derive(pin, salt)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (p *PINStore) ResetPIN() error {
	if err := p.secrets.Delete(PINKey); err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}
	return nil
}
