// Package httpx provides the small HTTP response plumbing shared by the
// server: JSON responders, error payloads, and a response writer wrapper
// that tracks whether headers were written.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp sends a JSON response with the given status code and message.
// If location is provided and the status code is http.StatusCreated (201),
// sets the Location header. Handles both pre-marshaled JSON and structs.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any, location ...string) {
	var msgJson []byte
	switch m := msg.(type) {
	case string:
		if b := []byte(m); json.Valid(b) {
			msgJson = b
		}
	case []byte:
		if json.Valid(m) {
			msgJson = m
		}
	default:
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError("unable to encode response").Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusCreated && len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}
