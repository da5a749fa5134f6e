package http

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the success envelope of every /api endpoint.
type APIResponse[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func writeOK[T any](w http.ResponseWriter, status int, msg string, data T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(APIResponse[T]{Code: status, Msg: msg, Data: data})
}
