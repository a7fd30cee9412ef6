package service

import "context"

// TxRepositories exposes repositories bound to a single transaction.
type TxRepositories interface {
	Tools() ToolRepository
}

// TxRunner runs fn in one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
