package services

import (
	"context"
	"fmt"

	"github.com/Charan170903/expense-tracker/internal/amqp"
	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/log"
	"github.com/Charan170903/expense-tracker/internal/source"
)

// LedgerService handles write-side ledger operations and notifies the worker
// over AMQP. Notification failures never fail the request: the write already
// succeeded, and the worker's backup timer will catch up.
type LedgerService struct {
	appender   source.TransactionAppender
	updater    source.SubscriptionUpdater
	amqpClient *amqp.Client
	logger     *log.StructuredLogger
}

func NewLedgerService(appender source.TransactionAppender, updater source.SubscriptionUpdater, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		appender:   appender,
		updater:    updater,
		amqpClient: amqpClient,
		logger:     log.NewStructuredLogger(log.Default(log.ComponentLedger)),
	}
}

// AddTransaction saves a transaction and publishes a ledger change.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	id, err := s.appender.Append(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.logger.LogTransactionSaved(ctx, id, tx.Title, tx.Amount.Cents, tx.Category)
	s.publish(ctx, amqp.ReasonTransactionAdded, id)
	return id, nil
}

// UpdateSubscription applies a recurring-classification decision. Only the
// user-facing terminal states are accepted here; detection writes go through
// the detector, not this path.
func (s *LedgerService) UpdateSubscription(ctx context.Context, id string, status core.SubscriptionStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %q is not a user decision", core.ErrInvalidTransition, status)
	}
	if err := s.updater.UpdateSubscriptionStatus(ctx, id, status); err != nil {
		return err
	}

	s.publish(ctx, amqp.ReasonSubscriptionUpdated, id)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, reason, id string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerChanged(ctx, reason, id); err != nil {
		fields := log.NewFields()
		fields[log.FieldReason] = reason
		fields[log.FieldTransactionID] = id
		s.logger.LogError(ctx, "Failed to publish ledger change", err, log.ComponentAMQP, log.OpPublish, fields)
	}
}

// Close releases the AMQP connection.
func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		return s.amqpClient.Close()
	}
	return nil
}
