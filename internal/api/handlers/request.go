package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/onetool/internal/api"
)

// decodeJSON reads a JSON body into v and writes the error response itself
// when it returns false. Bodies cut off by MaxBodyBytes get a 413.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		api.HandleError(w, err)
		return false
	}
	api.ErrorWithCode(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body")
	return false
}

// requireFields writes a 400 naming the first blank field and returns false.
// Pairs are field name then value.
func requireFields(w http.ResponseWriter, pairs ...string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			api.ErrorWithCode(w, http.StatusBadRequest, api.CodeBadRequest, pairs[i]+" is required")
			return false
		}
	}
	return true
}
