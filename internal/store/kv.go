// Package store persists the ledger as JSON documents in a small key-value
// store. Backends live in sub-packages and only need to move bytes.
package store

import (
	"context"
	"errors"
)

// Logical keys. They match what earlier browser builds wrote to local
// storage so exported data can be seeded as-is.
const (
	KeyExpenses    = "expense-manager-expenses"
	KeySavingsGoal = "expense-manager-savings-goal"
	KeyUser        = "expense-manager-user"
)

var (
	// ErrNotFound is returned by KV.Get for keys that were never written or
	// have been deleted.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt wraps values that exist but cannot be decoded.
	ErrCorrupt = errors.New("corrupt stored value")
	// ErrClosed is returned by backends after Close.
	ErrClosed = errors.New("store closed")
)

// KV is the storage port. Delete of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks kv when it supports it and succeeds otherwise.
func Ping(ctx context.Context, kv KV) error {
	if p, ok := kv.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
