package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WriteJSON encodes v with the given status. v is encoded before any header
// is written, so an unencodable value becomes a 500 instead of an empty 200.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

// AddServerTiming appends Server-Timing entries, e.g. {"search", 1.2ms}.
func AddServerTiming(w http.ResponseWriter, kv ...Timing) {
	if len(kv) == 0 {
		return
	}
	parts := make([]string, 0, len(kv))
	for _, p := range kv {
		parts = append(parts, fmt.Sprintf("%s;dur=%.1f", p.Name, float64(p.Dur.Microseconds())/1000))
	}
	w.Header().Add("Server-Timing", strings.Join(parts, ", "))
}

type Timing struct {
	Name string
	Dur  time.Duration
}
