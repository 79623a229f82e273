package util

import "encoding/json"

// ConvertStructToJson marshals v and returns the JSON text, or an empty
// object on failure. Meant for queue payloads and audit messages where a
// marshal error should not abort the caller.
func ConvertStructToJson(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
