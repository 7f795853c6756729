package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry is the single point of lookup for configured provider clients.
// It is built once at process start from whichever clients initialized
// successfully and injected into request handlers; membership never grows
// afterwards, only ShutdownAll drains it.
type Registry struct {
	mu      sync.Mutex
	clients map[string]Client
	logger  *slog.Logger
}

// NewRegistry builds a registry over the given clients, keyed by their
// lowercased names. Nil clients are skipped, so callers can pass the result
// of constructors that degraded to "unavailable" without filtering first.
func NewRegistry(logger *slog.Logger, clients ...Client) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		clients: make(map[string]Client, len(clients)),
		logger:  logger.With(slog.String("component", "provider_registry")),
	}
	for _, c := range clients {
		if c == nil {
			continue
		}
		name := strings.ToLower(c.Name())
		r.clients[name] = c
		r.logger.Info("registered provider", "provider", name)
	}
	return r
}

// Resolve looks up a client by name, case-insensitively. Empty or unknown
// names fail with an error listing the currently available provider names.
func (r *Registry) Resolve(name string) (Client, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no provider name given; available: %s",
			ErrUnknownProvider, strings.Join(r.Names(), ", "))
	}

	r.mu.Lock()
	c, ok := r.clients[strings.ToLower(name)]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q; available: %s",
			ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	return c, nil
}

// Names returns the sorted names of all registered providers.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShutdownAll shuts down every registered client. A failure on one client is
// collected and does not prevent attempting shutdown on the rest; if any
// failures occurred the combined error names each failing provider. The
// registry is emptied regardless, so a second call is a no-op.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]Client)
	r.mu.Unlock()

	var failures []error
	for name, c := range clients {
		if err := c.Shutdown(ctx); err != nil {
			r.logger.Error("provider shutdown failed", "provider", name, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			continue
		}
		r.logger.Info("provider shut down", "provider", name)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", ErrShutdown, errors.Join(failures...))
	}
	return nil
}
