package forecast

import (
	"fmt"
	"math"
)

// ridgeModel is an L2-regularized linear regression fitted via the normal
// equations. The intercept is carried as the first coefficient and left
// unpenalized.
type ridgeModel struct {
	coef []float64 // [intercept, w_1..w_d]
}

// fitRidge solves (X'X + alpha*I) w = X'y with X augmented by a ones column.
func fitRidge(xs [][]float64, ys []float64, alpha float64) (*ridgeModel, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, fmt.Errorf("ridge: %d rows, %d targets", len(xs), len(ys))
	}
	d := len(xs[0]) + 1 // +1 intercept

	// Normal equations: a = X'X (+ penalty), b = X'y.
	a := make([][]float64, d)
	for i := range a {
		a[i] = make([]float64, d)
	}
	b := make([]float64, d)

	row := make([]float64, d)
	for i, x := range xs {
		if len(x) != d-1 {
			return nil, fmt.Errorf("ridge: row %d has %d features, want %d", i, len(x), d-1)
		}
		row[0] = 1
		copy(row[1:], x)
		for j := 0; j < d; j++ {
			for k := 0; k < d; k++ {
				a[j][k] += row[j] * row[k]
			}
			b[j] += row[j] * ys[i]
		}
	}
	for j := 1; j < d; j++ { // intercept unpenalized
		a[j][j] += alpha
	}

	coef, err := solve(a, b)
	if err != nil {
		return nil, err
	}
	return &ridgeModel{coef: coef}, nil
}

// predict evaluates the fitted model on one feature vector.
func (m *ridgeModel) predict(x []float64) float64 {
	y := m.coef[0]
	for i, v := range x {
		y += m.coef[i+1] * v
	}
	return y
}

// rsquared computes the in-sample coefficient of determination. A constant
// target series has no variance to explain and scores 0.
func (m *ridgeModel) rsquared(xs [][]float64, ys []float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	meanY := 0.0
	for _, y := range ys {
		meanY += y
	}
	meanY /= float64(len(ys))

	ssRes := 0.0
	ssTot := 0.0
	for i, x := range xs {
		r := ys[i] - m.predict(x)
		ssRes += r * r
		t := ys[i] - meanY
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// solve performs Gaussian elimination with partial pivoting on a*w = b.
// The inputs are modified in place.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		// pivot
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("ridge: singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		// eliminate below
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for k := col; k < n; k++ {
				a[r][k] -= f * a[col][k]
			}
			b[r] -= f * b[col]
		}
	}

	// back substitution
	w := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for k := r + 1; k < n; k++ {
			sum -= a[r][k] * w[k]
		}
		w[r] = sum / a[r][r]
	}
	return w, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
