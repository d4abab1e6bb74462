package source

import (
	"context"
	"errors"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// ErrNotFound is returned by updaters when no transaction has the given id.
var ErrNotFound = errors.New("transaction not found")

// Ports for outbound adapters.
type (
	// TransactionReader returns the full ledger snapshot. Detection and
	// insight derivation always operate on the whole snapshot, so there is
	// no paginated variant.
	TransactionReader interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionAppender interface {
		Append(ctx context.Context, tx core.Transaction) (id string, err error)
	}

	// SubscriptionUpdater persists a recurring-classification change. The
	// adapter enforces the status transition rules and returns
	// core.ErrInvalidTransition when the change is not allowed.
	SubscriptionUpdater interface {
		UpdateSubscriptionStatus(ctx context.Context, id string, status core.SubscriptionStatus) error
	}
)
