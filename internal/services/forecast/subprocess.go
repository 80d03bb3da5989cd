package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
)

// Prefix the numeric process uses to mark a logical "ran but could not
// forecast" failure inside its JSON error field.
const insufficientHistoryPrefix = "insufficient_history"

// SubprocessForecaster runs the forecast in an isolated executable. The
// child receives the symbol (and horizon) as arguments, reads price history
// from the store itself, and writes exactly one JSON document to stdout.
// A non-zero exit is ErrProcessFailed carrying stderr; unparsable stdout on
// a zero exit is ErrMalformedOutput.
type SubprocessForecaster struct {
	bin     string
	args    []string
	timeout time.Duration // 0 disables the bound
}

// SubprocessOption configures SubprocessForecaster.
type SubprocessOption func(*SubprocessForecaster)

// WithArgs sets extra arguments placed before the symbol.
func WithArgs(args ...string) SubprocessOption {
	return func(f *SubprocessForecaster) {
		f.args = args
	}
}

// WithTimeout bounds one invocation. Zero keeps the historical unbounded
// wait.
func WithTimeout(d time.Duration) SubprocessOption {
	return func(f *SubprocessForecaster) {
		f.timeout = d
	}
}

// NewSubprocessForecaster creates an out-of-process forecaster invoking bin.
func NewSubprocessForecaster(bin string, opts ...SubprocessOption) *SubprocessForecaster {
	f := &SubprocessForecaster{bin: bin}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forecast invokes the child process. The bars argument is ignored: the
// isolated process reads its own history so the two sides cannot disagree
// about the training window.
func (f *SubprocessForecaster) Forecast(ctx context.Context, symbol string, _ []models.PriceBar, horizonDays int) (*models.ForecastResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	args := append(append([]string{}, f.args...), symbol, strconv.Itoa(horizonDays))
	cmd := exec.CommandContext(ctx, f.bin, args...)
	if f.timeout > 0 {
		// Wait must not block past cancellation on descendants that still
		// hold the stdout/stderr pipe write-ends
		cmd.WaitDelay = time.Second
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", models.ErrProcessFailed, detail)
	}

	var result models.ForecastResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrMalformedOutput, snippet(stdout.String()))
	}

	if result.Error != "" {
		if strings.HasPrefix(result.Error, insufficientHistoryPrefix) {
			return nil, fmt.Errorf("%w: %s", models.ErrInsufficientHistory, result.Error)
		}
		return nil, fmt.Errorf("forecast process reported: %s", result.Error)
	}

	if result.Symbol == "" || len(result.Predictions) == 0 {
		return nil, fmt.Errorf("%w: document missing symbol or predictions", models.ErrMalformedOutput)
	}

	return &result, nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	if s == "" {
		return "(empty stdout)"
	}
	return s
}

var _ domsvc.Forecaster = (*SubprocessForecaster)(nil)
