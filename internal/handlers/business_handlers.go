package handlers

import (
	"net/http"

	"invoicedesk/internal/common"
	"invoicedesk/internal/services"

	"github.com/labstack/echo/v4"
)

// BusinessHandlers handles HTTP requests for business profiles
type BusinessHandlers struct {
	businessService services.BusinessServiceInterface
}

// NewBusinessHandlers creates a new business handlers instance
func NewBusinessHandlers(businessService services.BusinessServiceInterface) *BusinessHandlers {
	return &BusinessHandlers{businessService: businessService}
}

type createBusinessRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	GSTIN    *string `json:"gstin"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	OnBehalf bool    `json:"on_behalf"`
}

// CreateBusiness handles POST /businesses. Administrators set on_behalf to
// provision a profile that the user registered under email claims later.
func (h *BusinessHandlers) CreateBusiness(c echo.Context) error {
	state, ok := requireSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createBusinessRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	business, err := h.businessService.CreateBusiness(c.Request().Context(), state, services.CreateBusinessInput{
		Name:     req.Name,
		Email:    req.Email,
		GSTIN:    req.GSTIN,
		Address:  req.Address,
		Phone:    req.Phone,
		OnBehalf: req.OnBehalf,
	})
	if err != nil {
		return respondError(c, err, "create business")
	}
	return c.JSON(http.StatusCreated, business)
}
