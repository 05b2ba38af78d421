// Package resolve implements the URI resolver (C8): an extensible
// protocol -> handler dispatch with dynamic/lock semantics.
package resolve

import (
	"context"
	"fmt"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/uri"
)

// Handler is the contract every protocol handler satisfies.
type Handler interface {
	Accepts(u uri.URI) bool
	Fetch(ctx context.Context, u uri.URI) (any, error)
	IsDynamic(ctx context.Context, u uri.URI) (bool, error)
}

// Resolver is a handler registry keyed by order of registration: the first
// handler whose Accepts returns true wins. Grounded on the same
// register/dispatch shape as an event-bus, generalized from "priority" to
// "first match wins" per §4.8.
type Resolver struct {
	handlers []Handler
}

// New returns an empty Resolver; register handlers with Register.
func New() *Resolver {
	return &Resolver{}
}

// Register appends h to the dispatch order.
func (r *Resolver) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

func (r *Resolver) find(u uri.URI) (Handler, error) {
	for _, h := range r.handlers {
		if h.Accepts(u) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", u.String(), pipelinepb.ErrUriNotSupported)
}

// Fetch dispatches to the first accepting handler's Fetch.
func (r *Resolver) Fetch(ctx context.Context, u uri.URI) (any, error) {
	h, err := r.find(u)
	if err != nil {
		return nil, err
	}
	return h.Fetch(ctx, u)
}

// IsDynamic dispatches to the first accepting handler's IsDynamic.
func (r *Resolver) IsDynamic(ctx context.Context, u uri.URI) (bool, error) {
	h, err := r.find(u)
	if err != nil {
		return false, err
	}
	return h.IsDynamic(ctx, u)
}
