// Package queue implements the durable offline queue: an ordered,
// persisted list of guard mutations not yet confirmed delivered to the
// remote registry.
//
// The whole queue is serialized under a single storage key after every
// change. Drains are exclusive: BeginDrain hands a snapshot to one
// drainer and refuses a second drain until EndDrain, which prevents the
// same item from being replayed twice. FIFO order is preserved so
// repeated updates to one guard replay oldest-first, approximating
// last-write-wins.
package queue
