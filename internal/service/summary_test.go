package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/bistpulse/internal/domain/models"
)

type stubRepo struct {
	summary *models.TickerSummary
	err     error
	ticker  string
}

func (s *stubRepo) PersistRun(_ models.Run, _ []models.PriceRow, _ []models.SymbolMeta) error {
	return nil
}

func (s *stubRepo) GetTickerSummary(ticker, interval string, from, to *time.Time) (*models.TickerSummary, error) {
	s.ticker = ticker
	return s.summary, s.err
}

func (s *stubRepo) GetMeta(_ string) (string, error) { return "", nil }

func (s *stubRepo) Ping() error { return nil }

func TestGetSummary_DelegatesToRepo(t *testing.T) {
	repo := &stubRepo{summary: &models.TickerSummary{Ticker: "SASA.IS", Bars: 3}}
	svc := NewSummaryService(repo)

	got, err := svc.GetSummary(context.Background(), "SASA.IS", "1d", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Bars != 3 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if repo.ticker != "SASA.IS" {
		t.Fatalf("repo called with %q", repo.ticker)
	}
}

func TestGetSummary_PropagatesError(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	svc := NewSummaryService(repo)

	if _, err := svc.GetSummary(context.Background(), "SASA.IS", "1d", nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}
