package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// errorBody — тело ответа с ошибкой.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type envelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError переводит вид доменной ошибки в HTTP-статус.
// Внутренние ошибки наружу не раскрываются.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		loggerFrom(r.Context()).WithError(err).Error("request failed")
	}
	writeJSON(w, status, envelope{Error: body})
}

func classify(err error) (int, errorBody) {
	var (
		stockErr   *domain.InsufficientStockError
		missingErr *domain.ProductsNotFoundError
		fieldErr   *domain.FieldError
	)

	switch {
	case errors.As(err, &stockErr):
		return http.StatusBadRequest, errorBody{
			Code:    "insufficient_stock",
			Message: err.Error(),
			Details: map[string]any{
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		}
	case errors.As(err, &missingErr):
		return http.StatusNotFound, errorBody{
			Code:    "not_found",
			Message: err.Error(),
			Details: map[string]any{"product_ids": missingErr.IDs},
		}
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, errorBody{
			Code:    "invalid_argument",
			Message: err.Error(),
			Details: map[string]any{"field": fieldErr.Field},
		}
	case errors.Is(err, domain.ErrInternal):
		return http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal server error"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, errorBody{Code: "insufficient_stock", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, errorBody{Code: "invalid_argument", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody{Code: "forbidden", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody{Code: "conflict", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal server error"}
	}
}

// decodeJSON читает тело запроса в dst; лишние поля запрещены.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.FieldError{Field: "body", Reason: "is required"}
		}
		return &domain.FieldError{Field: "body", Reason: fmt.Sprintf("is malformed: %v", err)}
	}
	if dec.More() {
		return &domain.FieldError{Field: "body", Reason: "must contain a single JSON object"}
	}
	return nil
}

// pathID разбирает положительный числовой параметр маршрута.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.FieldError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

// pageFrom читает page и limit (или page_size) из query.
func pageFrom(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"), "page")
	if err != nil {
		return domain.PageRequest{}, err
	}
	rawSize := q.Get("limit")
	if rawSize == "" {
		rawSize = q.Get("page_size")
	}
	size, err := queryInt(rawSize, "limit")
	if err != nil {
		return domain.PageRequest{}, err
	}

	req := domain.NewPageRequest(page, size)
	if err := req.Validate(); err != nil {
		return domain.PageRequest{}, err
	}
	return req, nil
}

func queryInt(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.FieldError{Field: field, Reason: "must be an integer"}
	}
	if v == 0 {
		// Явный ноль не должен превращаться в значение по умолчанию.
		v = -1
	}
	return v, nil
}

// loggerFrom возвращает логгер запроса, положенный middleware.
func loggerFrom(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*log.Entry); ok {
		return entry
	}
	return log.NewEntry(log.StandardLogger())
}
