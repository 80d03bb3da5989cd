package forecast

import (
	"math"
	"testing"
)

func TestFitRidgeRecoversLine(t *testing.T) {
	// y = 2x + 1 with a tiny penalty fits almost exactly
	var xs [][]float64
	var ys []float64
	for i := 1; i <= 10; i++ {
		x := float64(i)
		xs = append(xs, []float64{x})
		ys = append(ys, 2*x+1)
	}

	m, err := fitRidge(xs, ys, 1e-6)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	got := m.predict([]float64{5})
	if math.Abs(got-11) > 1e-3 {
		t.Fatalf("predict(5): want ~11, got %v", got)
	}
	if r2 := m.rsquared(xs, ys); r2 < 0.999 {
		t.Fatalf("expected near-perfect fit, r2=%v", r2)
	}
}

func TestRsquaredConstantTarget(t *testing.T) {
	xs := [][]float64{{1}, {2}, {3}}
	ys := []float64{7, 7, 7}

	m, err := fitRidge(xs, ys, 1.0)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if r2 := m.rsquared(xs, ys); r2 != 0 {
		t.Fatalf("constant target must score 0, got %v", r2)
	}
}

func TestFitRidgeRejectsMismatch(t *testing.T) {
	if _, err := fitRidge([][]float64{{1}}, []float64{1, 2}, 1.0); err == nil {
		t.Fatalf("expected error for row/target mismatch")
	}
	if _, err := fitRidge(nil, nil, 1.0); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestSolveSingular(t *testing.T) {
	a := [][]float64{
		{1, 1},
		{1, 1},
	}
	b := []float64{2, 2}
	if _, err := solve(a, b); err == nil {
		t.Fatalf("expected singular system error")
	}
}

func TestClampAndRound(t *testing.T) {
	if got := clamp01(-0.5); got != 0 {
		t.Fatalf("clamp01(-0.5) = %v", got)
	}
	if got := clamp01(1.5); got != 1 {
		t.Fatalf("clamp01(1.5) = %v", got)
	}
	if got := round(123.4567, 2); got != 123.46 {
		t.Fatalf("round = %v", got)
	}
	if got := round(0.98765, 4); got != 0.9877 {
		t.Fatalf("round = %v", got)
	}
}
