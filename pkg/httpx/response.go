package httpx

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// MaxJSONBody caps request bodies decoded by DecodeJSON.
const MaxJSONBody = 1 << 20

// WriteJSON writes v as JSON with the given status. Responses are never
// cached since most of them carry identity data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON reads a JSON object from r into dst. Form-encoded bodies are
// accepted too: their values are copied into dst by json tag via a map.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		return decodeForm(r, dst)
	}

	body := http.MaxBytesReader(w, r.Body, MaxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return BadRequest(CodeValidation, "Request body is required")
		}
		return BadRequest(CodeValidation, "Request body is not valid JSON")
	}
	return nil
}

func decodeForm(r *http.Request, dst any) error {
	if r.MultipartForm == nil && r.PostForm == nil {
		if err := r.ParseMultipartForm(MaxJSONBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return BadRequest(CodeValidation, "Request body is not a valid form")
		}
	}

	flat := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			flat[k] = v[0]
		}
	}

	raw, err := json.Marshal(flat)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return BadRequest(CodeValidation, "Request body is not a valid form")
	}
	return nil
}
