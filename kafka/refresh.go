package kafka

import (
	"context"
	"errors"
	"log"
	"strings"

	"libercare/config"
	"libercare/orchestrator"
	"libercare/types"
)

// RefreshRequest asks for an article refresh; an empty language refreshes all
type RefreshRequest struct {
	Language types.Language `json:"language"`
}

// Refresher is the part of the orchestrator the consumer drives
type Refresher interface {
	RunLanguage(ctx context.Context, lang types.Language) error
}

// NewRefreshHandler builds the message handler for refresh requests
func NewRefreshHandler(refresher Refresher) *TypedMessageHandler[RefreshRequest] {
	return &TypedMessageHandler[RefreshRequest]{
		Validate: func(msg *RefreshRequest) bool {
			msg.Language = types.Language(strings.ToLower(strings.TrimSpace(string(msg.Language))))
			if msg.Language == "" {
				return true
			}
			for _, lang := range config.SupportedLanguages() {
				if lang == msg.Language {
					return true
				}
			}
			log.Printf("Refresh request for unsupported language %q, skipping", msg.Language)
			return false
		},
		Process: func(ctx context.Context, msg *RefreshRequest) error {
			err := refresher.RunLanguage(ctx, msg.Language)
			if errors.Is(err, orchestrator.ErrRunInProgress) {
				// The running refresh covers this request
				log.Printf("Refresh request (%q) coalesced into the running refresh", msg.Language)
				return nil
			}
			return err
		},
		AlwaysMark: true,
	}
}

// NewRefreshConsumer creates a consumer that triggers refreshes from Kafka
func NewRefreshConsumer(cfg config.KafkaConfig, refresher Refresher) (*Consumer, error) {
	return NewConsumer(ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		Handler: NewRefreshHandler(refresher),
	})
}
