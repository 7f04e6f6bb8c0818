package client

import "errors"

// ErrOffline reports that connectivity is absent and no remote attempt
// was made.
var ErrOffline = errors.New("guardsync: offline")

// ErrQueued reports that a mutation could not be confirmed delivered
// and has been queued for a later sync. The wrapped text carries the
// original cause (offline, or the transport diagnostic).
var ErrQueued = errors.New("guardsync: queued for sync")
