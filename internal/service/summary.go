package service

import (
	"context"
	"time"

	"github.com/guttosm/bistpulse/internal/domain/models"
	"github.com/guttosm/bistpulse/internal/storage"
)

// SummaryService defines business logic for querying stored price data.
// It decouples HTTP handlers from data access.
type SummaryService interface {
	GetSummary(ctx context.Context, ticker, interval string, from, to *time.Time) (*models.TickerSummary, error)
}

type summaryService struct {
	repo storage.PricesRepository
}

func NewSummaryService(repo storage.PricesRepository) SummaryService {
	return &summaryService{repo: repo}
}

func (s *summaryService) GetSummary(_ context.Context, ticker, interval string, from, to *time.Time) (*models.TickerSummary, error) {
	return s.repo.GetTickerSummary(ticker, interval, from, to)
}
