package application

import (
	"fmt"
	"sort"
	"strings"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// PaymentRegistry selects payment providers by name.
type PaymentRegistry struct {
	providers   map[string]ports.PaymentProvider
	defaultName string
}

// NewPaymentRegistry creates a registry whose default provider is defaultName.
func NewPaymentRegistry(defaultName string, providers ...ports.PaymentProvider) (*PaymentRegistry, error) {
	r := &PaymentRegistry{providers: make(map[string]ports.PaymentProvider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	defaultName = strings.ToLower(strings.TrimSpace(defaultName))
	if _, ok := r.providers[defaultName]; !ok {
		return nil, fmt.Errorf("%w: %q is not configured", domain.ErrUnknownProvider, defaultName)
	}
	r.defaultName = defaultName
	return r, nil
}

// Get returns the provider called name, or the default when name is empty.
func (r *PaymentRegistry) Get(name string) (ports.PaymentProvider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

// Default is the name of the default provider.
func (r *PaymentRegistry) Default() string { return r.defaultName }

// Names lists configured providers.
func (r *PaymentRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
