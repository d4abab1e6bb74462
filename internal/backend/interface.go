package backend

import (
	"github.com/Charan170903/expense-tracker/internal/insights"
	"github.com/Charan170903/expense-tracker/internal/source"
)

// Backend bundles everything a running instance needs from its data
// layer: the transaction ports plus durable storage for memory anchors.
type Backend interface {
	source.TransactionReader
	source.TransactionAppender
	source.SubscriptionUpdater
	insights.AnchorStore
}

// BackendResult carries a constructed backend together with its
// cleanup function. Cleanup may be nil when nothing needs closing.
type BackendResult struct {
	Backend Backend
	Cleanup func() error
}

// Factory creates backends based on configuration.
type Factory struct {
	config *Config
}

func NewFactory(config *Config) *Factory {
	return &Factory{config: config}
}
