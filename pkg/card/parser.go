// parser.go - Request JSON parsing and example generation.
package card

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// GetExampleJSON returns a sample request for ogcard init.
func GetExampleJSON() string {
	return `{
  "text": "Hello from ogcard\nOne request, one share card",
  "font": "kanit",
  "image": ""
}`
}

// ParseRequest decodes a JSON request. Fields missing from data keep their
// defaults (see DefaultRequest); fields present but empty stay empty.
func ParseRequest(data []byte) (RenderRequest, error) {
	req := DefaultRequest()
	if err := json.Unmarshal(data, &req); err != nil {
		return RenderRequest{}, fmt.Errorf("parse request JSON: %w", err)
	}
	return req, nil
}

// ParseRequestFile loads a request JSON file.
func ParseRequestFile(path string) (RenderRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenderRequest{}, fmt.Errorf("read request: %w", err)
	}
	return ParseRequest(data)
}

// RequestFromQuery builds a request from URL query parameters. Absent
// parameters keep their defaults.
func RequestFromQuery(q url.Values) RenderRequest {
	req := DefaultRequest()
	if q.Has("text") {
		req.Text = q.Get("text")
	}
	if q.Has("font") {
		req.Font = q.Get("font")
	}
	req.Image = q.Get("image")
	return req
}
