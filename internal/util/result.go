// internal/util/result.go
package util

import "errors"

const retryMessage = "The request could not be completed, please try again"

// Result is the uniform outcome returned across the request boundary.
type Result struct {
	Success bool        `json:"success"`
	Kind    ErrorKind   `json:"error_kind,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OK builds a successful Result.
func OK(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

// ResultFromError converts an error into a failed Result. Dependency and
// concurrency failures never expose internal detail.
func ResultFromError(err error) Result {
	kind := KindOf(err)
	switch kind {
	case KindDependency, KindConcurrencyConflict:
		return Result{Kind: kind, Message: retryMessage}
	}
	return Result{Kind: kind, Message: userMessage(err)}
}

// userMessage returns the innermost sentinel message so wrapped context such as
// row ids stays out of client responses.
func userMessage(err error) string {
	for _, entry := range kindTable {
		if errors.Is(err, entry.target) {
			return entry.target.Error()
		}
	}
	return err.Error()
}
