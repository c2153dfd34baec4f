package responder

import (
	"context"
	"strings"

	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/storage"
	"go.uber.org/zap"
)

// SubstringResolver matches a message to a product by lowercase title
// containment, falling back to the first listed product when nothing
// matches. Best-effort heuristic, not a guarantee of correctness.
type SubstringResolver struct {
	products storage.ProductStore
	logger   *zap.Logger
}

func NewSubstringResolver(products storage.ProductStore, logger *zap.Logger) *SubstringResolver {
	return &SubstringResolver{
		products: products,
		logger:   logger,
	}
}

func (r *SubstringResolver) Resolve(ctx context.Context, msg *models.Message) *models.Product {
	products, err := r.products.ListProducts(ctx)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil
	}
	if len(products) == 0 {
		return nil
	}

	content := strings.ToLower(msg.Content)
	for i := range products {
		title := strings.ToLower(products[i].Title)
		if title != "" && strings.Contains(content, title) {
			return &products[i]
		}
	}

	// No title mentioned: assume the conversation is about the first listing
	return &products[0]
}
