package payments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	GatewayPayPal   = "paypal"
	GatewayPaystack = "paystack"
)

var (
	ErrUnknownGateway    = errors.New("unknown payment gateway")
	ErrCaptureIncomplete = errors.New("payment capture not completed")
)

type CreateOrderRequest struct {
	Amount    float64
	Currency  string
	Email     string
	Reference string
}

// GatewayOrder is the provider-side order a buyer is redirected to approve.
type GatewayOrder struct {
	ID         string
	Status     string
	ApproveURL string
}

type CaptureResult struct {
	ID              string
	Status          string
	Amount          float64
	AlreadyCaptured bool
}

type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	Capture(ctx context.Context, id string) (*CaptureResult, error)
}

type Registry struct {
	gateways map[string]Gateway
	fallback string
}

// NewRegistry indexes gateways by Name(). Nil gateways are skipped so
// unconfigured providers can be passed straight through from wiring.
func NewRegistry(fallback string, gateways ...Gateway) *Registry {
	r := &Registry{gateways: map[string]Gateway{}, fallback: strings.ToLower(strings.TrimSpace(fallback))}
	if r.fallback == "" {
		r.fallback = GatewayPayPal
	}
	for _, g := range gateways {
		if g == nil {
			continue
		}
		r.gateways[strings.ToLower(g.Name())] = g
	}
	return r
}

func (r *Registry) Get(name string) (Gateway, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = r.fallback
	}
	g, ok := r.gateways[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, name)
	}
	return g, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.gateways))
	for k := range r.gateways {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
