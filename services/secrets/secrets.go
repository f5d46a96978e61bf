package secrets

import (
	"os"

	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
)

// Provider retrieves named secrets. A missing secret is a configuration
// error and fatal at startup; the pipeline never starts a partial run with
// incomplete credentials.
type Provider interface {
	Get(name string) (string, error)
}

// EnvProvider reads secrets from the process environment. main loads a
// local .env file into the environment first, so both local runs and
// injected deployment secrets go through the same path.
type EnvProvider struct{}

// NewEnvProvider creates a new environment-backed secret provider
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Get returns the named secret or a configuration error if it is absent
func (p *EnvProvider) Get(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", apperrors.NewConfiguration("secret "+name+" not found in environment", nil)
	}
	return value, nil
}

// StaticProvider serves secrets from a fixed map. Used in tests.
type StaticProvider struct {
	values map[string]string
}

// NewStaticProvider creates a provider over a fixed secret map
func NewStaticProvider(values map[string]string) *StaticProvider {
	return &StaticProvider{values: values}
}

// Get returns the named secret or a configuration error if it is absent
func (p *StaticProvider) Get(name string) (string, error) {
	value, ok := p.values[name]
	if !ok || value == "" {
		return "", apperrors.NewConfiguration("secret "+name+" not provided", nil)
	}
	return value, nil
}
