// Package session resolves the tenant (business) context every scoped
// download requires.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tillworks/till/internal/remote"
)

// ErrNoTenant means no tenant context could be resolved. Scoped download
// phases treat this as fatal; nothing is fetched unscoped.
var ErrNoTenant = errors.New("no tenant context")

// Provider yields the current tenant id.
type Provider interface {
	CurrentTenantID(ctx context.Context) (string, error)
}

// Static is a Provider backed by configuration.
type Static struct {
	TenantID string
}

func (s Static) CurrentTenantID(context.Context) (string, error) {
	if s.TenantID == "" {
		return "", ErrNoTenant
	}
	return s.TenantID, nil
}

// Remote resolves the tenant from the backend session endpoint, caching the
// answer for the process lifetime.
type Remote struct {
	gw remote.Gateway

	mu       sync.Mutex
	tenantID string
}

// NewRemote creates a gateway-backed provider.
func NewRemote(gw remote.Gateway) *Remote {
	return &Remote{gw: gw}
}

func (r *Remote) CurrentTenantID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tenantID != "" {
		return r.tenantID, nil
	}

	s, err := r.gw.CurrentSession(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoTenant, err)
	}
	if s.TenantID == "" {
		return "", ErrNoTenant
	}

	r.tenantID = s.TenantID
	return r.tenantID, nil
}
