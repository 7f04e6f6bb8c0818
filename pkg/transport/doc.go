// Package transport executes single remote operations against the guard
// registry over HTTP: fetch all guards, create, partial update, location
// update, and delete.
//
// Each call is bounded by a per-call timeout and carries a bearer
// credential only when one is configured. The transport reports raw
// success or failure with the original diagnostic preserved; it never
// retries and never interprets payloads beyond JSON framing.
package transport
