package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	skafka "github.com/radieske/coinflip-miniapp-poc/internal/shared/kafka"
	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

// KafkaPublisher publica rounds liquidados no tópico round_settled,
// chaveados pelo id do round
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishRoundSettled(ctx context.Context, rec rounds.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return skafka.WriteJSON(ctx, p.Writer, rec.RoundID, b)
}
