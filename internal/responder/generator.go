package responder

import (
	"context"

	"github.com/xaenox/marketwatch/internal/models"
)

// Generator produces a reply for an inbound message, optionally grounded on
// the matched product and recent conversation history. An empty reply and an
// error are treated the same by the engine: fall back.
type Generator interface {
	Generate(ctx context.Context, msg *models.Message, product *models.Product, history []*models.Message) (string, error)
}

// ProductResolver finds the product a message is most likely about. Nil
// means no product context is available.
type ProductResolver interface {
	Resolve(ctx context.Context, msg *models.Message) *models.Product
}
