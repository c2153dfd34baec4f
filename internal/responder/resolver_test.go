package responder_test

import (
	"context"
	"testing"
	"time"

	"github.com/xaenox/marketwatch/internal/classifier"
	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/responder"
	"github.com/xaenox/marketwatch/internal/storage"
	"go.uber.org/zap"
)

func TestSubstringResolver(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.AddProduct(models.Product{ID: "p1", Title: "Mountain Bike", Price: 250})
	store.AddProduct(models.Product{ID: "p2", Title: "Desk Lamp", Price: 20})

	resolver := responder.NewSubstringResolver(store, zap.NewNop())
	clf := classifier.NewKeywordClassifier()

	newMsg := func(content string) *models.Message {
		msg, err := models.NewMessage("conv-1", "Jane", "seller@example.com", content,
			models.TypeCustomerInquiry, time.Now(), clf)
		if err != nil {
			t.Fatalf("NewMessage failed: %v", err)
		}
		return msg
	}

	t.Run("title match", func(t *testing.T) {
		product := resolver.Resolve(context.Background(), newMsg("Is the desk lamp still available?"))
		if product == nil || product.ID != "p2" {
			t.Fatalf("expected desk lamp, got %+v", product)
		}
	})

	t.Run("no match falls back to first product", func(t *testing.T) {
		product := resolver.Resolve(context.Background(), newMsg("Is it still available?"))
		if product == nil || product.ID != "p1" {
			t.Fatalf("expected first product fallback, got %+v", product)
		}
	})

	t.Run("no products yields nil", func(t *testing.T) {
		empty := responder.NewSubstringResolver(storage.NewMemoryStorage(), zap.NewNop())
		if product := empty.Resolve(context.Background(), newMsg("hello")); product != nil {
			t.Fatalf("expected nil, got %+v", product)
		}
	})
}
