package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sentinelhq/guardsync/pkg/log"
	"github.com/sentinelhq/guardsync/pkg/queue"
)

// SyncResult aggregates one drain of the offline queue.
type SyncResult struct {
	// Total is how many items the drain attempted (the snapshot size),
	// or the backlog size when no attempt was made.
	Total int `json:"total"`

	// Synced is how many items were delivered and removed.
	Synced int `json:"synced"`

	// Failed is how many items failed delivery this drain, whether
	// requeued or dropped.
	Failed int `json:"failed"`

	// Errors holds one human-readable entry per failure, including
	// items dropped at the retry ceiling.
	Errors []string `json:"errors"`
}

// SyncOfflineQueue drains the offline queue against the registry once.
//
// When connectivity is absent no attempt is made: the result reports
// the backlog size and an explanatory error, and the queue is left
// untouched. Otherwise the current backlog is snapshotted and replayed
// strictly in order, one item at a time, to preserve the relative order
// of mutations targeting the same guard. A failed item is requeued with
// its retry count advanced, unless that would reach the retry ceiling,
// in which case it is dropped permanently and recorded in Errors.
//
// There is no partial rollback: items synced before a later failure
// stay synced. Overlapping drains are refused; the second call reports
// zero attempts with an error entry and leaves the queue alone.
func (c *Client) SyncOfflineQueue(ctx context.Context) SyncResult {
	if !c.online() {
		res := SyncResult{
			Total:  c.queue.Len(),
			Errors: []string{"offline: sync not attempted"},
		}
		c.emitSync(res)
		return res
	}

	if c.queue.Len() == 0 {
		res := SyncResult{Errors: []string{}}
		c.emitSync(res)
		return res
	}

	snapshot, err := c.queue.BeginDrain()
	if err != nil {
		// Nothing was attempted; the competing drain owns the backlog,
		// so the live queue length would undercount it.
		res := SyncResult{Errors: []string{err.Error()}}
		c.emitSync(res)
		return res
	}
	defer c.queue.EndDrain()

	res := SyncResult{Total: len(snapshot), Errors: []string{}}
	for _, item := range snapshot {
		err := c.replay(ctx, item)
		if err == nil {
			res.Synced++
			continue
		}

		res.Failed++
		attempts := item.RetryCount + 1
		if attempts < c.cfg.MaxRetries {
			c.queue.Requeue(item)
			res.Errors = append(res.Errors,
				fmt.Sprintf("%s %s: attempt %d of %d failed: %v", item.Action, item.ID, attempts, c.cfg.MaxRetries, err))
			continue
		}

		// Retry ceiling reached: the item is gone for good. This is the
		// only place the loss is surfaced; the original caller already
		// got a "queued" response.
		res.Errors = append(res.Errors,
			fmt.Sprintf("%s %s: dropped after %d attempts: %v", item.Action, item.ID, attempts, err))
		c.logger.Warn("queued mutation dropped",
			log.String("item", item.ID),
			log.String("action", string(item.Action)),
			log.Int("attempts", attempts),
			log.Err(err))
		if c.events != nil {
			c.events.OnItemDropped(item, err)
		}
	}

	c.logger.Info("offline queue drained",
		log.Int("total", res.Total),
		log.Int("synced", res.Synced),
		log.Int("failed", res.Failed))
	c.emitSync(res)
	return res
}

func (c *Client) emitSync(res SyncResult) {
	if c.events != nil {
		c.events.OnSync(res)
	}
}

// replay delivers one queued mutation through the transport.
func (c *Client) replay(ctx context.Context, item queue.Item) error {
	switch item.Action {
	case queue.ActionCreate:
		var p createPayload
		if err := decodePayload(item, &p); err != nil {
			return err
		}
		_, err := c.transport.CreateGuard(ctx, p.Fields)
		return err

	case queue.ActionUpdate:
		var p updatePayload
		if err := decodePayload(item, &p); err != nil {
			return err
		}
		_, err := c.transport.UpdateGuard(ctx, p.GuardID, p.Fields)
		return err

	case queue.ActionUpdateLocation:
		var p locationPayload
		if err := decodePayload(item, &p); err != nil {
			return err
		}
		_, err := c.transport.UpdateLocation(ctx, p.GuardID, p.Location)
		return err

	case queue.ActionDelete:
		var p deletePayload
		if err := decodePayload(item, &p); err != nil {
			return err
		}
		return c.transport.DeleteGuard(ctx, p.GuardID)

	default:
		return fmt.Errorf("unknown action %q", item.Action)
	}
}

func decodePayload(item queue.Item, dst any) error {
	if err := json.Unmarshal(item.Payload, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
