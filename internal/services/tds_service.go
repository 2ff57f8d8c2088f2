package services

import (
	"context"
	"fmt"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/repositories"
	"invoicedesk/internal/settlement"
)

// TDSServiceInterface reads the tax-deducted-at-source ledger
type TDSServiceInterface interface {
	ListEntries(ctx context.Context, filter models.TDSFilter) ([]*models.TDSEntry, error)
}

type tdsService struct {
	tdsRepo repositories.TDSRepository
}

// NewTDSService creates a new ledger service
func NewTDSService(tdsRepo repositories.TDSRepository) TDSServiceInterface {
	return &tdsService{tdsRepo: tdsRepo}
}

func (s *tdsService) ListEntries(ctx context.Context, filter models.TDSFilter) ([]*models.TDSEntry, error) {
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, invalid("offset", "%s", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset

	if filter.FiscalYear != nil {
		label, err := settlement.ParseFiscalYear(*filter.FiscalYear)
		if err != nil {
			return nil, invalid("fiscal_year", "%s", err.Error())
		}
		filter.FiscalYear = &label
	}

	entries, err := s.tdsRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tds entries: %w", err)
	}
	if entries == nil {
		entries = []*models.TDSEntry{}
	}
	return entries, nil
}
