package server

import (
	"errors"
	"net/http"
	"strings"

	attributedomain "github.com/harborworks/chandlery/internal/attribute/domain"
	orderdomain "github.com/harborworks/chandlery/internal/order/domain"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"github.com/harborworks/chandlery/pkg/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isRoleError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	case isPolicyError(err):
		// Policy rejections are well-formed requests the domain refuses;
		// the code is stable and clients must not retry blindly.
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "policy_rejected",
			Message: err.Error(),
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, userdomain.ErrUserExists),
		errors.Is(err, tariffdomain.ErrTariffExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable), db.IsLockTimeoutErr(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, userdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrInvalidUser),
		errors.Is(err, attributedomain.ErrInvalidUser),
		errors.Is(err, attributedomain.ErrInvalidSnapshot),
		errors.Is(err, attributedomain.ErrMissingFields),
		errors.Is(err, tariffdomain.ErrInvalidTariff),
		errors.Is(err, tariffdomain.ErrInvalidName),
		errors.Is(err, tariffdomain.ErrInvalidMaxOrders),
		errors.Is(err, tariffdomain.ErrInvalidPrice),
		errors.Is(err, tariffdomain.ErrInvalidBillingPeriod),
		errors.Is(err, quotadomain.ErrInvalidBuyer),
		errors.Is(err, quotadomain.ErrInvalidTariff),
		errors.Is(err, orderdomain.ErrInvalidOrder),
		errors.Is(err, orderdomain.ErrInvalidItems),
		errors.Is(err, orderdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

// isRoleError covers role guard rejections: the actor exists but does not
// carry the required role.
func isRoleError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, userdomain.ErrUserNotBuyer),
		errors.Is(err, userdomain.ErrUserNotSeller),
		errors.Is(err, userdomain.ErrUserNotAdmin):
		return true
	default:
		return false
	}
}

// isPolicyError covers quota policy rejections with stable codes.
func isPolicyError(err error) bool {
	switch {
	case errors.Is(err, quotadomain.ErrNoActiveTariff),
		errors.Is(err, quotadomain.ErrOrderLimitReached):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, attributedomain.ErrUserNotFound),
		errors.Is(err, attributedomain.ErrSnapshotNotFound),
		errors.Is(err, tariffdomain.ErrTariffNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "missing_fields" {
		return "fields"
	}
	return ""
}

// classifyErrorForLog labels errors for the request log without leaking
// internals into the response path.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	switch {
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation", err.Error()
	case isRoleError(err):
		return "forbidden", err.Error()
	case isPolicyError(err):
		return "policy", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	case errors.Is(err, ErrTooManyRequests):
		return "rate_limited", err.Error()
	case errors.Is(err, ErrServiceUnavailable), db.IsLockTimeoutErr(err):
		return "transient", err.Error()
	default:
		return "internal", err.Error()
	}
}
