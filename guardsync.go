// Package guardsync keeps a remote guard registry consistent with local
// mutations, even when the network is unavailable, by queueing
// operations durably and replaying them with bounded retries.
//
// Example usage:
//
//	cfg := guardsync.DefaultConfig()
//	cfg.BaseURL = "https://registry.example.com"
//	cfg.AuthToken = "api-key"
//	c, err := guardsync.New(cfg, guardsync.WithStore(kv.NewFileStore(dir)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	guards, err := c.FetchGuards(ctx)
package guardsync

import (
	"github.com/sentinelhq/guardsync/pkg/client"
	"github.com/sentinelhq/guardsync/pkg/guard"
)

// Config holds client construction parameters.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = client.Config

// Client is the guard-state synchronization client.
type Client = client.Client

// SyncResult aggregates one drain of the offline queue.
type SyncResult = client.SyncResult

// QueueStatus describes the offline backlog.
type QueueStatus = client.QueueStatus

// Option configures optional client behavior.
type Option = client.Option

// Guard is the canonical registry entity.
type Guard = guard.Guard

// Location is a geographic fix with an accuracy radius.
type Location = guard.Location

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return client.DefaultConfig()
}

// New creates a Client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	return client.New(cfg, opts...)
}

// Re-exported options.
var (
	WithHTTPClient   = client.WithHTTPClient
	WithLogger       = client.WithLogger
	WithStore        = client.WithStore
	WithConnectivity = client.WithConnectivity
	WithEventHandler = client.WithEventHandler
)
