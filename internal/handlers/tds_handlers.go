package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/services"

	"github.com/labstack/echo/v4"
)

// TDSHandlers serves the read-only tax withholding ledger
type TDSHandlers struct {
	tdsService services.TDSServiceInterface
}

// NewTDSHandlers creates a new TDS handlers instance
func NewTDSHandlers(tdsService services.TDSServiceInterface) *TDSHandlers {
	return &TDSHandlers{tdsService: tdsService}
}

// ListEntries handles GET /tds-entries?business_id=&client_id=&fiscal_year=&limit=&offset=
func (h *TDSHandlers) ListEntries(c echo.Context) error {
	state, ok := requireSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filter := models.TDSFilter{OwnerID: state.OwnerID()}
	var err error
	if filter.BusinessID, err = common.ValidateOptionalUUID(c.QueryParam("business_id"), "business_id"); err != nil {
		return common.SendValidationError(c, "business_id", err.Error())
	}
	if filter.ClientID, err = common.ValidateOptionalUUID(c.QueryParam("client_id"), "client_id"); err != nil {
		return common.SendValidationError(c, "client_id", err.Error())
	}
	if fy := strings.TrimSpace(c.QueryParam("fiscal_year")); fy != "" {
		filter.FiscalYear = &fy
	}
	if filter.Limit, err = intParam(c, "limit"); err != nil {
		return common.SendValidationError(c, "limit", "limit must be an integer")
	}
	if filter.Offset, err = intParam(c, "offset"); err != nil {
		return common.SendValidationError(c, "offset", "offset must be an integer")
	}

	entries, err := h.tdsService.ListEntries(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "list tds entries")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
