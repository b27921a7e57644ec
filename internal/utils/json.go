package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DecodeOptionalJSONRequest leaves dst untouched and reports false when the
// body is empty.
func DecodeOptionalJSONRequest(r *http.Request, dst interface{}) (bool, error) {
	body, err := ReadRequestBody(r)
	if err != nil {
		return false, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(dst); err != nil {
		return false, fmt.Errorf("invalid JSON: %w", err)
	}
	return true, nil
}

func ReadRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
