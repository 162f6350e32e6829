// internal/api/handler/handler.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"yieldledger/internal/util"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 30 * time.Second

var validate = newValidator()

// newValidator lets `gt`/`gte` tags work on decimal.Decimal fields.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// base carries the response helpers shared by every handler.
type base struct {
	logger *slog.Logger
}

// Helper function to send JSON responses.
func (h base) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h base) respondOK(w http.ResponseWriter, code int, message string, data interface{}) {
	h.respondWithJSON(w, code, util.OK(message, data))
}

// respondWithError maps the error kind to a status code and writes a failed
// Result.
func (h base) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	result := util.ResultFromError(err)
	statusCode := http.StatusInternalServerError

	switch result.Kind {
	case util.KindValidation:
		statusCode = http.StatusBadRequest
		if util.IsError(err, util.ErrDuplicateEntry) {
			statusCode = http.StatusConflict
		}
	case util.KindNotFound:
		statusCode = http.StatusNotFound
	case util.KindInsufficientFunds:
		statusCode = http.StatusPaymentRequired // 402 Payment Required
	case util.KindInvalidState, util.KindConcurrencyConflict:
		statusCode = http.StatusConflict
	case util.KindForbidden:
		statusCode = http.StatusForbidden
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled service error", "error", err, "path", r.URL.Path)
	}

	h.respondWithJSON(w, statusCode, result)
}

// decode reads a JSON body into dst and validates it.
func (h base) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed body: %w", util.ErrInvalidInput)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), util.ErrInvalidInput)
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: %w", name, util.ErrInvalidInput)
	}
	return id, nil
}

// page parses limit/offset query parameters. Invalid values fall back to the
// service defaults.
func page(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
