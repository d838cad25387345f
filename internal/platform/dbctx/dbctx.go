package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional gorm transaction.
// Repositories use Tx when set and fall back to their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New wraps ctx without a transaction.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// WithTx returns a copy bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}
