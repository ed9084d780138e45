// Package dbctx bundles a request context with an optional GORM
// transaction so repo methods can participate in a caller's
// transaction or fall back to the shared pool.
package dbctx

import (
	"context"

	"gorm.io/gorm"
)

type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Resolve returns the transaction handle bound to ctx, or db if none
// was supplied — the "transaction := tx; if transaction == nil ..."
// idiom used throughout internal/repos.
func Resolve(c Context, db *gorm.DB) *gorm.DB {
	tx := c.Tx
	if tx == nil {
		tx = db
	}
	return tx.WithContext(c.Ctx)
}
