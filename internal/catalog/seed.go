package catalog

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Kyz7/storefront/internal/models"
	"github.com/pkg/errors"
)

// Seed creates sample categories and products for local development. Each
// product is linked to one category, round-robin.
func (s *Service) Seed(ctx context.Context, categories, products int) error {
	if categories <= 0 {
		categories = 1
	}

	created := make([]*models.Category, 0, categories)
	for i := 1; i <= categories; i++ {
		category, err := s.CreateCategory(ctx, fmt.Sprintf("Category %d", i))
		if err != nil {
			return errors.Wrapf(err, "seed category %d", i)
		}
		created = append(created, category)
	}

	rng := rand.New(rand.NewSource(int64(categories*1000 + products)))
	for i := 1; i <= products; i++ {
		category := created[(i-1)%len(created)]
		_, err := s.CreateProduct(ctx, ProductInput{
			Name:          fmt.Sprintf("%s Item %d", category.Name, i),
			Price:         int64(100 + rng.Intn(9900)),
			TotalQuantity: int64(rng.Intn(50)),
			CategoryIDs:   []uint{category.ID},
		})
		if err != nil {
			return errors.Wrapf(err, "seed product %d", i)
		}
	}
	return nil
}
