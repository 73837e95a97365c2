package postgres

import "encoding/json"

func stringOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
