package client

import (
	"github.com/sentinelhq/guardsync/pkg/kv"
	"github.com/sentinelhq/guardsync/pkg/log"
	"github.com/sentinelhq/guardsync/pkg/queue"
	"github.com/sentinelhq/guardsync/pkg/transport"
)

// ConnectivityFunc reports whether the network is currently reachable.
// The environment supplies it; the client only consults it.
type ConnectivityFunc func() bool

// EventHandler receives notifications from the client. Callbacks run
// synchronously on the calling goroutine; keep them fast.
type EventHandler interface {
	// OnQueued fires when a mutation enters the offline queue.
	OnQueued(item queue.Item)

	// OnSync fires after every drain with the aggregate result.
	OnSync(result SyncResult)

	// OnItemDropped fires when an item exhausts its retry ceiling.
	OnItemDropped(item queue.Item, err error)
}

// Option configures optional behavior of the client.
type Option func(*options)

type options struct {
	httpClient   transport.HTTPClient
	logger       log.Logger
	store        kv.Store
	connectivity ConnectivityFunc
	events       EventHandler
}

func defaultOptions() options {
	return options{
		logger:       log.NewNoopLogger(),
		connectivity: func() bool { return true },
	}
}

// WithHTTPClient sets a custom HTTP client for registry communication.
// If not provided, a default client is used.
func WithHTTPClient(hc transport.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithLogger sets a custom logger. If not provided, the client is silent.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore sets the durable store backing the offline queue.
// If not provided, an in-memory store is used and the queue does not
// survive restarts.
func WithStore(store kv.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithConnectivity sets the connectivity signal consulted before each
// remote attempt. If not provided, the client assumes it is online.
func WithConnectivity(fn ConnectivityFunc) Option {
	return func(o *options) {
		o.connectivity = fn
	}
}

// WithEventHandler sets a handler for client events.
// If not provided, no events are emitted.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.events = h
	}
}
