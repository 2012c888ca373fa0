package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// decodeJSON reads a single JSON document from the request body. It reports
// oversized bodies separately so callers can answer 413.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errBadRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errRequestTooLarge
		}
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

func (r responder) writeDecodeError(w http.ResponseWriter, req *http.Request, err error) {
	if errors.Is(err, errRequestTooLarge) {
		r.writeError(req.Context(), w, http.StatusRequestEntityTooLarge, errRequestTooLarge)
		return
	}
	r.writeError(req.Context(), w, http.StatusBadRequest, errBadRequestBody)
}

// flexibleString accepts a JSON string or number and keeps its text form.
// Browser forms often send price as a number.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexibleString(n.String())
	return nil
}

func (f *flexibleString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}
