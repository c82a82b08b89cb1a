package server

import (
	"time"

	"github.com/wippyai/svgtidy-playground/playground"
)

type OptimizeRequest struct {
	Input string `json:"input"`
	View  string `json:"view,omitempty"` // "preview" (default) or "code"
}

type MetricsResponse struct {
	InputBytes     int      `json:"input_bytes"`
	OutputBytes    int      `json:"output_bytes"`
	SavingsPercent *float64 `json:"savings_percent,omitempty"`
}

type OptimizeResponse struct {
	Output  string          `json:"output"`
	Error   string          `json:"error,omitempty"`
	View    string          `json:"view"`
	Pane    string          `json:"pane"`
	Metrics MetricsResponse `json:"metrics"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Cache     string    `json:"cache"`
}

func newOptimizeResponse(r playground.Result, mode playground.ViewMode, m playground.Metrics) OptimizeResponse {
	pane, _ := playground.Present(r, mode)
	return OptimizeResponse{
		Output: r.Output,
		Error:  r.Message,
		View:   mode.String(),
		Pane:   pane.String(),
		Metrics: MetricsResponse{
			InputBytes:     m.InputBytes,
			OutputBytes:    m.OutputBytes,
			SavingsPercent: m.Savings,
		},
	}
}
