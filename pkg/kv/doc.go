// Package kv provides the durable key-value storage port used for
// offline-queue persistence, with in-memory, file-backed, and
// SQLite-backed implementations.
package kv
