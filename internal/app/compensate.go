package app

import (
	"context"
	"fmt"
	"log"
)

// compensated runs a sequence of independently-committed steps and, when one
// fails, undoes the committed ones in reverse order. It approximates an
// atomic multi-party operation on a store that only guarantees atomicity per
// single mutation.
//
// Compensations run under a context detached from the caller's: a caller
// disconnect must not strand already-committed steps half-reversed.
type compensated struct {
	ctx    context.Context
	logger *log.Logger
	undos  []func(context.Context) error
}

func newCompensated(ctx context.Context, logger *log.Logger) *compensated {
	if logger == nil {
		logger = log.Default()
	}
	return &compensated{ctx: ctx, logger: logger}
}

// step executes fn and, on success, registers undo to reverse it if a later
// step fails. undo may be nil for steps that need no reversal.
func (c *compensated) step(fn func(context.Context) error, undo func(context.Context) error) error {
	if err := fn(c.ctx); err != nil {
		return err
	}
	if undo != nil {
		c.undos = append(c.undos, undo)
	}
	return nil
}

// rollback reverses committed steps in reverse order. An undo that itself
// fails is unrecoverable here and is reported for reconciliation.
func (c *compensated) rollback() error {
	ctx := context.WithoutCancel(c.ctx)
	for i := len(c.undos) - 1; i >= 0; i-- {
		if err := c.undos[i](ctx); err != nil {
			c.logger.Printf("ERROR: compensation step %d failed: %v", i, err)
			return fmt.Errorf("compensation failed: %w", err)
		}
	}
	c.undos = nil
	return nil
}
