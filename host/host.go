// Package host binds component lifetimes to bus subscription tokens.
//
// The bus assumes, but does not enforce, that whoever registers
// subscriptions also revokes them when the subscriber's lifetime ends.
// This package is the integration layer that makes that guarantee hold:
// adding a component creates a Token alongside it, and removing the
// component disposes the Token after the component detaches. Components
// do not inherit anything from the bus; cleanup is explicit ownership,
// not a base class.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/msgbus"
)

// Sentinel errors for the host layer.
var (
	// ErrDuplicateComponent is returned when adding a name twice.
	ErrDuplicateComponent = errors.New("component name already attached")

	// ErrUnknownComponent is returned when removing a name that was
	// never added.
	ErrUnknownComponent = errors.New("component is not attached")
)

// Binding is what a component receives on attach: the bus and the token
// its subscriptions must be tracked on.
type Binding struct {
	bus   msgbus.Bus
	token *msgbus.Token
}

// Bus returns the message bus.
func (b *Binding) Bus() msgbus.Bus {
	return b.bus
}

// Token returns the component's subscription token. Registrations made
// through it are revoked automatically when the component is removed.
func (b *Binding) Token() *msgbus.Token {
	return b.token
}

// Component is implemented by host components that subscribe to the bus.
type Component interface {
	// Attach is called when the component is added. Subscriptions must
	// go through the Binding's token so removal can revoke them.
	Attach(ctx context.Context, b *Binding) error

	// Detach is called before the component's token is disposed.
	Detach(ctx context.Context)
}

// attached pairs a component with its token.
type attached struct {
	component Component
	token     *msgbus.Token
}

// Host owns a bus and the components attached to it.
type Host struct {
	bus msgbus.Bus

	mu         sync.Mutex
	components map[string]attached
}

// New creates a host over the given bus.
func New(bus msgbus.Bus) *Host {
	return &Host{
		bus:        bus,
		components: make(map[string]attached),
	}
}

// Bus returns the host's bus.
func (h *Host) Bus() msgbus.Bus {
	return h.bus
}

// Add attaches a component under a unique name. The component receives
// a fresh token; if Attach fails, anything it registered is revoked
// before the error is returned.
func (h *Host) Add(ctx context.Context, name string, c Component) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.components[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}

	token := h.bus.NewToken(name)
	if err := c.Attach(ctx, &Binding{bus: h.bus, token: token}); err != nil {
		token.Dispose()
		return fmt.Errorf("attach %s: %w", name, err)
	}

	h.components[name] = attached{component: c, token: token}
	return nil
}

// Remove detaches a component and disposes its token, revoking every
// subscription it registered.
func (h *Host) Remove(ctx context.Context, name string) error {
	h.mu.Lock()
	a, exists := h.components[name]
	if !exists {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	delete(h.components, name)
	h.mu.Unlock()

	a.component.Detach(ctx)
	a.token.Dispose()
	return nil
}

// Len returns the number of attached components.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.components)
}

// Close detaches every component. Safe to call more than once.
func (h *Host) Close(ctx context.Context) {
	h.mu.Lock()
	components := h.components
	h.components = make(map[string]attached)
	h.mu.Unlock()

	for _, a := range components {
		a.component.Detach(ctx)
		a.token.Dispose()
	}
}
