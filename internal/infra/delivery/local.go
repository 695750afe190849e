package delivery

import (
	"context"

	"cateringhub/internal/infra/broker/kafka"
	"cateringhub/internal/infra/outbox"
)

// LocalProducer feeds relayed events straight into a Handler so the outbox
// worker can run without a broker in single-process deployments.
type LocalProducer struct {
	Handler Handler
}

func (p LocalProducer) Publish(ctx context.Context, _ string, _ string, payload []byte, _ map[string]string) error {
	return p.Handler.HandlePayload(ctx, payload)
}

var (
	_ outbox.Producer      = LocalProducer{}
	_ kafka.MessageHandler = Handler{}
)
