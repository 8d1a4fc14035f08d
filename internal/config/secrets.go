package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrSecretMissing is returned when neither an inline value nor a file provide a secret.
var ErrSecretMissing = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
}

// LoadSecret returns the trimmed secret from src, preferring File over Value.
func LoadSecret(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s: %w", name, ErrSecretMissing)
	}
	return secret, nil
}

// optionalSecret is LoadSecret that treats an absent secret as empty.
func optionalSecret(src Source) (string, error) {
	secret, err := LoadSecret(src)
	if errors.Is(err, ErrSecretMissing) {
		return "", nil
	}
	return secret, err
}
