package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeBody unmarshals a request body into dst. Bodies arrive in two
// shapes: a raw JSON object, or a JSON string whose content is itself the
// JSON-encoded object (event-trigger payloads). Both are normalized here.
func DecodeBody(body []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty request body")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return fmt.Errorf("unwrap string body: %w", err)
		}
		trimmed = []byte(inner)
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("parse request body: %w", err)
	}
	return nil
}
