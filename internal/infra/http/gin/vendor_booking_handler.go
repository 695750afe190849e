package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	vendorapp "cateringhub/internal/app/handlers/vendorbookings"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/infra/security"
)

type VendorBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h VendorBookingHandler) List(c *gin.Context) {
	vendor, ok := requireRole(c, security.RoleVendor)
	if !ok {
		return
	}
	result, err := queries.Ask[vendorapp.ListQuery, dto.BookingCollection](c.Request.Context(), h.Queries, vendorapp.ListQuery{
		VendorID: vendor.VendorID,
		Status:   statusFilter(c),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(result.Items))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h VendorBookingHandler) UpdateStatus(c *gin.Context) {
	vendor, ok := requireRole(c, security.RoleVendor)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[vendorapp.UpdateStatusCommand, dto.Booking](c.Request.Context(), h.Commands, vendorapp.UpdateStatusCommand{
		VendorID:  vendor.VendorID,
		BookingID: c.Param("id"),
		Status:    req.Status,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ VendorBookingHTTP = VendorBookingHandler{}
