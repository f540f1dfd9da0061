package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/misblock/internal/domain"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	slog.DebugContext(c.Request().Context(), "bad request", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.DebugContext(c.Request().Context(), "bad request", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func InvalidFields(c echo.Context, msg string, fields map[string]string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Fields: fields})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func Unavailable(c echo.Context, msg string) error {
	return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: msg})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "internal error", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// Error replies with the status that matches the ledger error kind of err.
func Error(c echo.Context, err error) error {
	var le domain.LedgerError
	if !errors.As(err, &le) {
		return InternalError(c, err)
	}
	return c.JSON(StatusOf(c, le.Kind), errorResponse{Error: le.Error(), Kind: le.Kind.String()})
}

func StatusOf(c echo.Context, kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthorized:
		if requester, _ := c.Request().Context().Value(domain.RequesterIdCtxKey).(string); requester == "" {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindDuplicateKey, domain.KindAlreadyDistributed:
		return http.StatusConflict
	case domain.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.KindQuotaExhausted:
		return http.StatusTooManyRequests
	case domain.KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
