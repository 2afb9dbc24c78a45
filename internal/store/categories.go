package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cashfolio/cashfolio/internal/model"
)

const sectionCategories = "categories"

// JSON layout of the categories section. Filters are a tagged union on the
// "type" field; the manual filter's transaction identity is stored as a
// decimal string because 64-bit hashes exceed JSON's safe integer range.
type categoryDTO struct {
	Name    string      `json:"name"`
	Budget  *budgetDTO  `json:"budget,omitempty"`
	Filters []filterDTO `json:"filters"`
}

type budgetDTO struct {
	Amount int64  `json:"amount"`
	Period string `json:"period"`
}

type filterDTO struct {
	Type        string `json:"type"`
	ID          int    `json:"id"`
	Transaction string `json:"transaction,omitempty"`

	DisplayName          string `json:"displayName,omitempty"`
	MatchType            string `json:"matchType,omitempty"`
	DescriptionPattern   string `json:"descriptionPattern,omitempty"`
	ContraAccountPattern string `json:"contraAccountPattern,omitempty"`
}

// SaveCategories persists the whole category collection.
func (s *Store) SaveCategories(ctx context.Context, categories []model.Category) error {
	dtos := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		dto := categoryDTO{Name: c.Name, Filters: make([]filterDTO, 0, len(c.Filters))}
		if c.Budget != nil {
			dto.Budget = &budgetDTO{Amount: c.Budget.Amount, Period: string(c.Budget.Period)}
		}
		for _, f := range c.Filters {
			switch f := f.(type) {
			case model.ManualFilter:
				dto.Filters = append(dto.Filters, filterDTO{
					Type:        model.FilterManual,
					ID:          f.ID,
					Transaction: strconv.FormatUint(f.Transaction, 10),
				})
			case *model.TextFilter:
				dto.Filters = append(dto.Filters, filterDTO{
					Type:                 model.FilterText,
					ID:                   f.ID,
					DisplayName:          f.DisplayName,
					MatchType:            f.MatchType,
					DescriptionPattern:   f.DescriptionPattern,
					ContraAccountPattern: f.ContraAccountPattern,
				})
			default:
				return fmt.Errorf("unknown filter type %T in category %q", f, c.Name)
			}
		}
		dtos = append(dtos, dto)
	}

	payload, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return s.putSection(ctx, sectionCategories, string(payload))
}

// LoadCategories returns the persisted collection, nil when never stored.
// Text filter patterns are recompiled on load, so a corrupted pattern
// surfaces here rather than at assignment time.
func (s *Store) LoadCategories(ctx context.Context) ([]model.Category, error) {
	payload, err := s.loadSection(ctx, sectionCategories)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, nil
	}

	var dtos []categoryDTO
	if err := json.Unmarshal([]byte(payload), &dtos); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	categories := make([]model.Category, 0, len(dtos))
	for _, dto := range dtos {
		c := model.Category{Name: dto.Name}
		if dto.Budget != nil {
			c.Budget = &model.Budget{Amount: dto.Budget.Amount, Period: model.PeriodType(dto.Budget.Period)}
		}
		for _, fd := range dto.Filters {
			switch fd.Type {
			case model.FilterManual:
				identity, err := strconv.ParseUint(fd.Transaction, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("decode manual filter %d in category %q: %w", fd.ID, dto.Name, err)
				}
				c.Filters = append(c.Filters, model.ManualFilter{ID: fd.ID, Transaction: identity})
			case model.FilterText:
				tf, err := model.NewTextFilter(fd.ID, fd.DisplayName, fd.MatchType, fd.DescriptionPattern, fd.ContraAccountPattern)
				if err != nil {
					return nil, fmt.Errorf("decode text filter %d in category %q: %w", fd.ID, dto.Name, err)
				}
				c.Filters = append(c.Filters, tf)
			default:
				return nil, fmt.Errorf("unknown filter type %q in category %q", fd.Type, dto.Name)
			}
		}
		categories = append(categories, c)
	}
	return categories, nil
}
