package repositories

import "context"

// TransactionManager runs a unit of work atomically.
// Repository calls made with the ctx passed to fn join the transaction;
// if fn returns an error every write made inside it is rolled back.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RepositoryWithTx is a marker interface for repositories that support transactions
type RepositoryWithTx interface {
	TransactionManager
}
