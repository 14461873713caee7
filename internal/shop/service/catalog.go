package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/shop/domain"
	"github.com/aussiebroadwan/storefront/internal/shop/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
)

type CatalogService struct {
	Store store.Store
}

// ProductInput is a new product. Price may be a JSON number or a decimal
// string from a form. ImageURL must come from a stored upload, never from
// the client body.
type ProductInput struct {
	Name        string `json:"product_name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       any    `json:"price" validate:"required"`
	CategoryID  string `json:"category_id" validate:"required"`
	ImageURL    string `json:"product_image" validate:"required"`
}

type CategoryInput struct {
	Name        string `json:"category_name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func parsePrice(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, ErrInvalidPrice
		}
		f = p
	default:
		return 0, ErrInvalidPrice
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, ErrInvalidPrice
	}
	return f, nil
}

// CreateProduct validates in and stores it under an existing category.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if err := checkRequired(in); err != nil {
		return domain.Product{}, err
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return domain.Product{}, err
	}

	catID, err := idx.Parse(in.CategoryID)
	if err != nil {
		return domain.Product{}, ErrInvalidCategory
	}

	p := domain.Product{
		ID:          idx.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		ImageURL:    in.ImageURL,
		CategoryID:  catID.String(),
		CreatedAt:   time.Now().UTC(),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		cat, err := tx.Categories().GetCategoryByID(ctx, p.CategoryID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCategory
		}
		if err != nil {
			return fmt.Errorf("lookup category: %w", err)
		}
		p.CategoryName = cat.Name

		if err := tx.Products().CreateProduct(ctx, p); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCategory
			}
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Store.Products().ListProducts(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := checkRequired(in); err != nil {
		return domain.Category{}, err
	}

	c := domain.Category{
		ID:          idx.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Categories().CreateCategory(ctx, c); err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Categories().ListCategories(ctx)
}
