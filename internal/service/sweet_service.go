package service

import (
	"context"
	"errors"
	"strings"

	"Sweetshop/internal/cache"
	dom "Sweetshop/internal/domain"
	"Sweetshop/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrPriceInvalid     = errors.New("price must be greater than zero")
	ErrQuantityInvalid  = errors.New("quantity must not be negative")
)

const defaultListLimit = 100

// SweetService implements the catalog operations: CRUD, search and the
// quantity-mutating purchase/restock.
type SweetService struct {
	repo  repo.SweetRepo
	cache *cache.SweetCache
	sf    singleflight.Group
}

// NewSweetService creates a SweetService. If c is nil, caching is disabled.
func NewSweetService(r repo.SweetRepo, c *cache.SweetCache) *SweetService {
	return &SweetService{repo: r, cache: c}
}

// validateFields checks the constraints shared by create and update; nil
// means the field was not provided.
func validateFields(name, category *string, price *float64, quantity *int64) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return ErrNameRequired
	}
	if category != nil && strings.TrimSpace(*category) == "" {
		return ErrCategoryRequired
	}
	if price != nil && *price <= 0 {
		return ErrPriceInvalid
	}
	if quantity != nil && *quantity < 0 {
		return ErrQuantityInvalid
	}
	return nil
}

func (s *SweetService) Create(ctx context.Context, name, category string, price float64, quantity int64) (dom.Sweet, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if err := validateFields(&name, &category, &price, &quantity); err != nil {
		return dom.Sweet{}, err
	}
	sw, err := s.repo.Create(ctx, dom.Sweet{
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: quantity,
	})
	if err != nil {
		return dom.Sweet{}, err
	}
	s.invalidateCache(ctx)
	return sw, nil
}

func (s *SweetService) List(ctx context.Context, skip, limit int) ([]dom.Sweet, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if s.cache != nil {
		key := cache.ListKey(skip, limit)
		v, err, _ := s.sf.Do("list:"+key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, key); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, skip, limit)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, key, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Sweet), nil
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *SweetService) GetByID(ctx context.Context, id int64) (dom.Sweet, error) {
	sw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Sweet{}, ErrNotFound
		}
		return dom.Sweet{}, err
	}
	return sw, nil
}

func (s *SweetService) Search(ctx context.Context, f dom.SweetFilter) ([]dom.Sweet, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	if s.cache != nil {
		key := cache.SearchKey(f)
		v, err, _ := s.sf.Do("search:"+key, func() (interface{}, error) {
			if list, err := s.cache.GetSearch(ctx, key); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.Search(ctx, f)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetSearch(ctx, key, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Sweet), nil
	}
	return s.repo.Search(ctx, f)
}

// Update applies a partial patch; unset fields are left untouched. Provided
// fields must satisfy the same constraints as create.
func (s *SweetService) Update(ctx context.Context, id int64, patch dom.SweetPatch) (dom.Sweet, error) {
	if err := validateFields(patch.Name, patch.Category, patch.Price, patch.Quantity); err != nil {
		return dom.Sweet{}, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.Category != nil {
		trimmed := strings.TrimSpace(*patch.Category)
		patch.Category = &trimmed
	}
	sw, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Sweet{}, ErrNotFound
		}
		return dom.Sweet{}, err
	}
	s.invalidateCache(ctx)
	return sw, nil
}

func (s *SweetService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Purchase decrements stock by qty; fails with *domain.InsufficientStockError
// when fewer than qty units are on hand, leaving the quantity unchanged.
func (s *SweetService) Purchase(ctx context.Context, id int64, qty int64) (dom.Sweet, error) {
	sw, err := s.repo.Purchase(ctx, id, qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Sweet{}, ErrNotFound
		}
		return dom.Sweet{}, err
	}
	s.invalidateCache(ctx)
	return sw, nil
}

// Restock increments stock by qty.
func (s *SweetService) Restock(ctx context.Context, id int64, qty int64) (dom.Sweet, error) {
	sw, err := s.repo.Restock(ctx, id, qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Sweet{}, ErrNotFound
		}
		return dom.Sweet{}, err
	}
	s.invalidateCache(ctx)
	return sw, nil
}

func (s *SweetService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}
