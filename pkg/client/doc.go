// Package client provides the guard-state synchronization client: the
// single entry point for reading the remote guard registry and applying
// mutations to it with offline resilience.
//
// Writes that cannot be confirmed delivered are captured in a durable
// offline queue, whether the cause was absent connectivity or a failed
// transport call, and replayed by SyncOfflineQueue with a bounded retry
// ceiling. Reads are never queued.
//
// Example usage:
//
//	c, err := client.New(client.Config{
//	    BaseURL:   "https://registry.example.com",
//	    AuthToken: "api-key",
//	}, client.WithStore(kv.NewFileStore("/var/lib/guardsync")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	guards, err := c.FetchGuards(ctx)
//	// ...
//	result := c.SyncOfflineQueue(ctx)
package client
