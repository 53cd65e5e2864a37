package health

import (
	"encoding/json"
	"net/http"

	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

// Response is the JSON body served by Handler.
type Response struct {
	Status  string                 `json:"status"` // "ready" | "unavailable"
	Checks  map[string]CheckStatus `json:"checks,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// CheckStatus is one check's entry in Response.
type CheckStatus struct {
	Status  string `json:"status"` // "ok" | "error"
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Handler serves the readiness probe: 200 when every check passes, 503 otherwise.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.Run(r.Context())

		response := Response{Status: "ready", Checks: make(map[string]CheckStatus, len(status.Checks))}
		code := http.StatusOK
		if !status.Healthy {
			response.Status = "unavailable"
			code = http.StatusServiceUnavailable
			if err != nil {
				response.Message = err.Error()
			}
		}
		for _, result := range status.Checks {
			entry := CheckStatus{Status: "ok", Latency: result.Latency.String()}
			if !result.Healthy {
				entry.Status = "error"
				entry.Error = result.Error
			}
			response.Checks[result.Name] = entry
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(response); err != nil && c.logger != nil {
			c.logger.Error("Failed to encode health response", logger.ErrorField(err))
		}
	}
}
