package usecase

import (
	"testing"
	"time"
)

func TestDecidePricesFirstFetch(t *testing.T) {
	p := NewStalenessPolicy(90, 22)
	now := time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)

	v := p.DecidePrices(time.Time{}, false, now)
	if !v.NeedsRefresh {
		t.Fatalf("expected refresh for empty store")
	}
	wantFrom := time.Date(2025, 12, 6, 0, 0, 0, 0, time.UTC)
	if !v.MissingFrom.Equal(wantFrom) {
		t.Fatalf("missing from: want %v, got %v", wantFrom, v.MissingFrom)
	}
	wantTo := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !v.MissingTo.Equal(wantTo) {
		t.Fatalf("missing to: want %v, got %v", wantTo, v.MissingTo)
	}
}

func TestDecidePricesFreshToday(t *testing.T) {
	p := NewStalenessPolicy(90, 22)
	now := time.Date(2026, 3, 6, 23, 0, 0, 0, time.UTC)
	latest := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	if v := p.DecidePrices(latest, true, now); v.NeedsRefresh {
		t.Fatalf("today's bar is fresh, got refresh %+v", v)
	}
}

func TestDecidePricesOneDayGapBeforeCutoff(t *testing.T) {
	p := NewStalenessPolicy(90, 22)
	latest := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	// before market close, yesterday's latest bar is still expected
	early := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	if v := p.DecidePrices(latest, true, early); v.NeedsRefresh {
		t.Fatalf("one-day gap before cutoff must be fresh, got %+v", v)
	}

	late := time.Date(2026, 3, 6, 22, 30, 0, 0, time.UTC)
	v := p.DecidePrices(latest, true, late)
	if !v.NeedsRefresh {
		t.Fatalf("one-day gap after cutoff must refresh")
	}
	wantFrom := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !v.MissingFrom.Equal(wantFrom) {
		t.Fatalf("missing from: want %v, got %v", wantFrom, v.MissingFrom)
	}
}

func TestDecidePricesMultiDayGap(t *testing.T) {
	p := NewStalenessPolicy(90, 22)
	latest := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 6, 1, 0, 0, 0, time.UTC) // hour irrelevant for gap > 1

	v := p.DecidePrices(latest, true, now)
	if !v.NeedsRefresh {
		t.Fatalf("multi-day gap must refresh regardless of hour")
	}
	wantFrom := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if !v.MissingFrom.Equal(wantFrom) {
		t.Fatalf("missing from: want %v, got %v", wantFrom, v.MissingFrom)
	}
	wantTo := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !v.MissingTo.Equal(wantTo) {
		t.Fatalf("missing to: want %v, got %v", wantTo, v.MissingTo)
	}
}

func TestPredictionsStale(t *testing.T) {
	p := NewStalenessPolicy(90, 22)
	now := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)

	if !p.PredictionsStale(time.Time{}, false, now) {
		t.Fatalf("no set means stale")
	}
	today := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if p.PredictionsStale(today, true, now) {
		t.Fatalf("generated today is fresh")
	}
	yesterday := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if !p.PredictionsStale(yesterday, true, now) {
		t.Fatalf("generated yesterday is stale")
	}
}
