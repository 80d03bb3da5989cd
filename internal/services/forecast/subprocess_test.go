package forecast

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func shellForecaster(t *testing.T, script string, opts ...SubprocessOption) *SubprocessForecaster {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	opts = append([]SubprocessOption{WithArgs("-c", script)}, opts...)
	return NewSubprocessForecaster("/bin/sh", opts...)
}

func TestSubprocessSuccess(t *testing.T) {
	doc := `{"symbol":"AAPL","model_version":"ridge_v1","historical_days_used":60,` +
		`"predictions":[{"target_date":"2026-03-09","predicted_close":123.45,"confidence":0.93}]}`
	f := shellForecaster(t, "echo '"+doc+"'")

	res, err := f.Forecast(context.Background(), "AAPL", nil, 5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if res.Symbol != "AAPL" || len(res.Predictions) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !res.Predictions[0].TargetDate.Equal(want) {
		t.Fatalf("target date: want %v, got %v", want, res.Predictions[0].TargetDate)
	}
	if res.Predictions[0].PredictedClose != 123.45 {
		t.Fatalf("predicted close: %v", res.Predictions[0].PredictedClose)
	}
}

func TestSubprocessMalformedOutput(t *testing.T) {
	f := shellForecaster(t, "echo not json")

	_, err := f.Forecast(context.Background(), "AAPL", nil, 5)
	if !errors.Is(err, models.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestSubprocessNonZeroExit(t *testing.T) {
	f := shellForecaster(t, "echo rate limited >&2; exit 3")

	_, err := f.Forecast(context.Background(), "AAPL", nil, 5)
	if !errors.Is(err, models.ErrProcessFailed) {
		t.Fatalf("expected ErrProcessFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("stderr detail missing from error: %v", err)
	}
}

func TestSubprocessInsufficientHistory(t *testing.T) {
	doc := `{"symbol":"AAPL","model_version":"ridge_v1","error":"insufficient_history: need at least 20 training rows, got 3"}`
	f := shellForecaster(t, "echo '"+doc+"'")

	_, err := f.Forecast(context.Background(), "AAPL", nil, 5)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestSubprocessEmptyDocument(t *testing.T) {
	f := shellForecaster(t, `echo '{}'`)

	_, err := f.Forecast(context.Background(), "AAPL", nil, 5)
	if !errors.Is(err, models.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput for empty document, got %v", err)
	}
}

func TestSubprocessTimeout(t *testing.T) {
	// the backgrounded child inherits the stdout pipe and outlives the
	// shell, so Run must not wait for it past the deadline
	f := shellForecaster(t, "sleep 5 & wait $!", WithTimeout(100*time.Millisecond))

	start := time.Now()
	_, err := f.Forecast(context.Background(), "AAPL", nil, 5)
	if !errors.Is(err, models.ErrProcessFailed) {
		t.Fatalf("expected ErrProcessFailed, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("timeout not enforced")
	}
}
