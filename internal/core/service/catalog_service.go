package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var validate = validator.New()

// query-string names of ItemFilter fields, used in FilterError
var filterFieldNames = map[string]string{
	"Category":  "category",
	"CreatorID": "creatorId",
	"Color":     "color",
	"Size":      "size",
	"SortBy":    "sortBy",
	"SortOrder": "sortOrder",
}

type CatalogService struct {
	store  port.EntityStore
	logger *slog.Logger
}

func NewCatalogService(store port.EntityStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{store: store, logger: logger}
}

// ListItems validates the filter, pushes it down to the store and returns the
// store's result as is. There is no pagination and no retry.
func (s *CatalogService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	items, err := s.store.FindItems(ctx, filter.WithDefaults())
	if err != nil {
		return nil, storeError("list items", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

// ItemDetail loads an item with its gallery and rating summary from one snapshot.
func (s *CatalogService) ItemDetail(ctx context.Context, itemID string) (domain.ItemDetail, error) {
	var detail domain.ItemDetail

	err := s.store.ReadSnapshot(ctx, func(r port.EntityReader) error {
		item, err := r.FindItemByID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("find item %s: %w", itemID, err)
		}

		images, err := r.FindItemImages(ctx, itemID)
		if err != nil {
			return fmt.Errorf("find images of %s: %w", itemID, err)
		}

		reviews, err := r.FindReviewsByItemID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("find reviews of %s: %w", itemID, err)
		}

		if images == nil {
			images = []domain.ItemImage{}
		}
		detail = domain.ItemDetail{
			Item:   *item,
			Images: images,
			Rating: s.summarizeRatings(reviews),
		}
		return nil
	})
	if err != nil {
		return domain.ItemDetail{}, storeError("item detail", err)
	}

	return detail, nil
}

func (s *CatalogService) summarizeRatings(reviews []domain.Review) domain.RatingSummary {
	summary := domain.RatingSummary{
		Average:      decimal.Zero,
		Distribution: make(map[int]int),
	}

	total := 0
	for _, r := range reviews {
		if r.Rating < domain.MinRating || r.Rating > domain.MaxRating {
			s.logger.Warn("skipping review with out-of-range rating",
				slog.String("review_id", r.ID), slog.String("item_id", r.ItemID), slog.Int("rating", r.Rating))
			continue
		}
		summary.Count++
		summary.Distribution[r.Rating]++
		total += r.Rating
	}

	if summary.Count > 0 {
		summary.Average = decimal.NewFromInt(int64(total)).DivRound(decimal.NewFromInt(int64(summary.Count)), 2)
	}
	return summary
}

func validateFilter(f domain.ItemFilter) error {
	if err := validate.Struct(f); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			fe := vErrs[0]
			field := filterFieldNames[fe.Field()]
			if field == "" {
				field = fe.Field()
			}
			switch fe.Tag() {
			case "oneof":
				return &domain.FilterError{Field: field, Reason: "must be one of: " + fe.Param()}
			case "max":
				return &domain.FilterError{Field: field, Reason: "must be at most " + fe.Param() + " characters"}
			default:
				return &domain.FilterError{Field: field, Reason: "failed " + fe.Tag() + " check"}
			}
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}

	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return &domain.FilterError{Field: "minPrice", Reason: "must not be negative"}
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return &domain.FilterError{Field: "maxPrice", Reason: "must not be negative"}
	}
	return nil
}

// storeError keeps InvalidFilter, NotFound and StoreUnavailable as they are
// and classifies anything else coming out of the store as StoreUnavailable.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidFilter) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
