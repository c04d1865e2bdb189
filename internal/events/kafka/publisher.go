// Package kafka publishes committed ledger entries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"purse/internal/config"
	"purse/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EntryCommitted is the message value for one ledger entry.
type EntryCommitted struct {
	EntryID        uint      `json:"entry_id"`
	AccountID      uint      `json:"account_id"`
	Reference      string    `json:"reference"`
	Kind           string    `json:"kind"`
	Amount         string    `json:"amount"`
	BalanceBefore  string    `json:"balance_before"`
	BalanceAfter   string    `json:"balance_after"`
	Description    string    `json:"description"`
	CounterpartyID *uint     `json:"counterparty_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newEntryCommitted(e *models.LedgerEntry) EntryCommitted {
	return EntryCommitted{
		EntryID:        e.ID,
		AccountID:      e.AccountID,
		Reference:      e.Reference,
		Kind:           string(e.Kind),
		Amount:         e.Amount.String(),
		BalanceBefore:  e.BalanceBefore.String(),
		BalanceAfter:   e.BalanceAfter.String(),
		Description:    e.Description,
		CounterpartyID: e.CounterpartyID,
		CreatedAt:      e.CreatedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	log    *zap.Logger
}

// batchTimeout caps how long a synchronous write waits for a batch to fill.
// The writer default is one second.
const batchTimeout = 10 * time.Millisecond

// NewPublisher writes to cfg.Topic. Messages are keyed by account id so each
// account's entries stay ordered within a partition.
func NewPublisher(cfg config.KafkaConfig, log *zap.Logger) *Publisher {
	return newPublisher(newWriter(cfg), log)
}

func newWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: batchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func newPublisher(w messageWriter, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{writer: w, log: log.Named("kafka")}
}

func (p *Publisher) PublishEntries(ctx context.Context, entries ...*models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(newEntryCommitted(e))
		if err != nil {
			return fmt.Errorf("marshal entry %d: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatUint(uint64(e.AccountID), 10)),
			Value: data,
			Headers: []kafka.Header{
				{Key: "kind", Value: []byte(e.Kind)},
				{Key: "reference", Value: []byte(e.Reference)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d entry events: %w", len(msgs), err)
	}
	p.log.Debug("entry events published", zap.Int("count", len(msgs)))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
