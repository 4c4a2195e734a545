package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FallbackMessage is used when a failure carries no description at all.
const FallbackMessage = "request error"

// RequestError is the only error shape callers of the client observe.
// StatusCode is zero when no response was received.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

func newRequestError(status int, msg string) *RequestError {
	if msg == "" {
		msg = FallbackMessage
	}
	return &RequestError{StatusCode: status, Message: msg}
}

// asRequestError keeps an existing *RequestError and replaces anything else
// with one carrying only its message.
func asRequestError(err error) *RequestError {
	var re *RequestError
	if errors.As(err, &re) {
		return re
	}
	return newRequestError(0, err.Error())
}

// normalizeErrors is the last response stage. Message priority:
// server "error" field, then transport description, then FallbackMessage.
func normalizeErrors(ex *Exchange) {
	if ex.Err != nil {
		ex.Response = nil
		ex.Err = asRequestError(ex.Err)
		return
	}
	resp := ex.Response
	if resp == nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return
	}

	msg := serverMessage(resp.Body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
	}
	ex.Response = nil
	ex.Err = newRequestError(resp.StatusCode, msg)
}

// serverMessage extracts a non-empty string "error" field from a JSON body.
func serverMessage(body []byte) string {
	var envelope struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	s, _ := envelope.Error.(string)
	return s
}
