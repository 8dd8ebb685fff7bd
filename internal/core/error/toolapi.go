package errx

import "net/http"

// WrapToolAPI maps a failure from the tool backend to the unified error type.
// A zero status means the request never reached the backend (network error).
func WrapToolAPI(err error, status int) error {
	if err == nil {
		return nil
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	return New(err, status, ToolAPIErrorMessage)
}
