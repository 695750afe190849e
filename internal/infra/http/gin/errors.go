package ginserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/infra/obs"
)

func statusFor(kind failure.Kind) int {
	switch kind {
	case failure.KindValidation, failure.KindInvalidState, failure.KindInvalidTransition:
		return http.StatusBadRequest
	case failure.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {error, details?}. Non user-facing errors are
// logged and answered with a generic message.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	if !failure.UserFacing(err) {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"kind", failure.KindOf(err),
				"request_id", obs.RequestIDFromContext(c.Request.Context()),
				"error", err,
			)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": errorMessage(err)}
	if details := failure.DetailsOf(err); len(details) > 0 {
		body["details"] = details
	}
	c.JSON(statusFor(failure.KindOf(err)), body)
}

func errorMessage(err error) string {
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}

// bindJSON decodes the request body into dst. An empty body is accepted when
// optional is set. Shape errors become validation failures with field details.
func bindJSON(c *gin.Context, dst any, optional bool) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return failure.Validation("invalid request", map[string]string{
			field: "must be a " + jsonTypeName(typeErr.Type.Kind().String()),
		})
	}
	if errors.Is(err, io.EOF) {
		return failure.Validation("request body required", nil)
	}
	return failure.Validation("malformed JSON body", nil)
}

func jsonTypeName(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "number"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "list"
	case "map", "struct":
		return "object"
	default:
		return kind
	}
}

// statusFilter accepts ?status=a,b and repeated ?status=a&status=b.
func statusFilter(c *gin.Context) string {
	values := c.QueryArray("status")
	return strings.Join(values, ",")
}
