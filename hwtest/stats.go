package hwtest

import (
	"encoding/json"
	"math"
)

// SessionStats counts what one session did.
type SessionStats struct {
	PacketsReceived int `json:"packets_received"`
	CasesSent       int `json:"cases_sent"`
	Replies         int `json:"replies"`
	FilesPersisted  int `json:"files_persisted"`
	Ignored         int `json:"ignored"`     // packets with no meaning in the current state
	ExecErrors      int `json:"exec_errors"` // agent side: cases the executor rejected
}

func Ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0.0
	}
	ratio := float64(numerator) / float64(denominator)
	return math.Round(ratio*1000) / 1000
}

func (st *SessionStats) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"PacketsReceived": st.PacketsReceived,
		"CasesSent":       st.CasesSent,
		"Replies":         st.Replies,
		"FilesPersisted":  st.FilesPersisted,
		"Ignored":         st.Ignored,
		"ExecErrors":      st.ExecErrors,
		"ReplyRate":       Ratio(st.Replies, st.CasesSent),
	}
}

func (st *SessionStats) DumpMetrics() string {
	jsonBytes, err := json.MarshalIndent(st.Metrics(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(jsonBytes)
}
