// Package guard defines the canonical guard entity and the normalization
// rules that convert heterogeneous upstream registry records into it.
//
// Upstream schemas are untyped and field names vary between deployments.
// Normalize therefore treats every incoming record as an open map and
// applies ordered fallbacks with deterministic defaults, so a Guard is
// always well-formed regardless of what the registry sent.
package guard
