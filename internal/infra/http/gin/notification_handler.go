package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"cateringhub/internal/app/dto"
	notificationapp "cateringhub/internal/app/handlers/notifications"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/domain/shared/failure"
)

type NotificationHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h NotificationHandler) List(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(c, h.Logger, failure.Validation("invalid request", map[string]string{"limit": "must be a non-negative number"}))
			return
		}
		limit = v
	}
	result, err := queries.Ask[notificationapp.ListQuery, dto.NotificationCollection](c.Request.Context(), h.Queries, notificationapp.ListQuery{
		UserID: user.UserID,
		Limit:  limit,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(result.Items))
}

var _ NotificationHTTP = NotificationHandler{}
