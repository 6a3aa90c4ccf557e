// Package creds is the credential boundary for the CLI. Passwords live in
// the operating system's secret store; the rest of the code only sees the
// Store interface and never persists a password itself.
package creds

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Service is the secret-store service name under which passwords are filed.
const Service = "tvue"

// ErrNotFound is returned when no secret exists for the requested user.
var ErrNotFound = errors.New("credential not found")

// Store resolves and manages per-user secrets.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
	Delete(service, user string) error
}

// Keyring stores secrets in the OS keyring.
type Keyring struct{}

func (Keyring) Get(service, user string) (string, error) {
	secret, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, user)
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return secret, nil
}

func (Keyring) Set(service, user, secret string) error {
	if err := keyring.Set(service, user, secret); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (Keyring) Delete(service, user string) error {
	err := keyring.Delete(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, service, user)
	}
	if err != nil {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	secrets map[string]string
}

func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]string)}
}

func (m *Memory) key(service, user string) string { return service + "\x00" + user }

func (m *Memory) Get(service, user string) (string, error) {
	secret, ok := m.secrets[m.key(service, user)]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, user)
	}
	return secret, nil
}

func (m *Memory) Set(service, user, secret string) error {
	m.secrets[m.key(service, user)] = secret
	return nil
}

func (m *Memory) Delete(service, user string) error {
	k := m.key(service, user)
	if _, ok := m.secrets[k]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, service, user)
	}
	delete(m.secrets, k)
	return nil
}

// Resolve looks up the password for user, distinguishing "no credential"
// from a store failure. It must be called before any network traffic.
func Resolve(store Store, user string) (string, error) {
	if user == "" {
		return "", errors.New("username is required to resolve a credential")
	}
	secret, err := store.Get(Service, user)
	if err != nil {
		return "", err
	}
	return secret, nil
}
