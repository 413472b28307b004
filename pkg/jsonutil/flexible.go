package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleString converts a json.RawMessage to a *string, handling cases
// where LLMs return numbers or booleans instead of strings. Returns nil for
// JSON null, absent, or empty-string values so that "unknown" stays distinct
// from a real value downstream.
func FlexibleString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		strVal = strings.TrimSpace(strVal)
		if strVal == "" {
			return nil
		}
		return &strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		var s string
		if numVal == float64(int64(numVal)) {
			s = fmt.Sprintf("%d", int64(numVal))
		} else {
			s = fmt.Sprintf("%g", numVal)
		}
		return &s
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		s := fmt.Sprintf("%t", boolVal)
		return &s
	}

	// Fallback: raw string representation
	s := string(raw)
	return &s
}
