package features

import (
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func barsFromCloses(closes []float64) []models.PriceBar {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Symbol:    "TEST",
			TradeDate: start.AddDate(0, 0, i),
			Close:     c,
		}
	}
	return bars
}

func TestVectorNeedsMinHistory(t *testing.T) {
	b := NewBuilder()
	closes := make([]float64, MinHistory-1)
	for i := range closes {
		closes[i] = 100
	}
	if x := b.Vector(closes); x != nil {
		t.Fatalf("expected nil vector for %d closes, got %v", len(closes), x)
	}
}

func TestVectorValues(t *testing.T) {
	b := NewBuilder()
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	x := b.Vector(closes)
	if x == nil {
		t.Fatalf("expected vector")
	}
	if len(x) != NumFeatures {
		t.Fatalf("expected %d features, got %d", NumFeatures, len(x))
	}

	want := []float64{
		11, 10, 9, 7, 2, // lags 1,2,3,5,10
		9, 6.5, // rolling means 5,10
		math.Sqrt(2.5),  // sample std of {7..11}
		5, 10,           // momentum 5,10
		0.1,             // daily return (11-10)/10
	}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-9 {
			t.Fatalf("feature %d: want %v, got %v", i, want[i], x[i])
		}
	}
}

func TestVectorConstantSeries(t *testing.T) {
	b := NewBuilder()
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 42
	}
	x := b.Vector(closes)
	if x[7] != 0 {
		t.Fatalf("expected zero volatility for constant series, got %v", x[7])
	}
	if x[10] != 0 {
		t.Fatalf("expected zero daily return for constant series, got %v", x[10])
	}
}

func TestBuildDropsLeadingHistory(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rows := NewBuilder().Build(barsFromCloses(closes))

	if len(rows) != len(closes)-MinHistory {
		t.Fatalf("expected %d rows, got %d", len(closes)-MinHistory, len(rows))
	}
	if rows[0].Y != closes[MinHistory] {
		t.Fatalf("first target: want %v, got %v", closes[MinHistory], rows[0].Y)
	}
}

func TestBuildUsesOnlyPriorCloses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rows := NewBuilder().Build(barsFromCloses(closes))

	// lag_1 of each row must be the close preceding the target, never the
	// target itself
	for i, r := range rows {
		target := MinHistory + i
		if r.X[0] != closes[target-1] {
			t.Fatalf("row %d lag_1: want %v, got %v", i, closes[target-1], r.X[0])
		}
		if r.X[0] == r.Y {
			t.Fatalf("row %d leaks its target into lag_1", i)
		}
	}
}

func TestBuildTooShort(t *testing.T) {
	rows := NewBuilder().Build(barsFromCloses([]float64{1, 2, 3}))
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
