package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/session"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CreateBusinessInput describes a new business profile. With OnBehalf set an
// administrator provisions the profile for the user registered under Email,
// who claims it on first sign-in.
type CreateBusinessInput struct {
	Name     string
	Email    string
	GSTIN    *string
	Address  *string
	Phone    *string
	OnBehalf bool
}

// BusinessServiceInterface creates business profiles
type BusinessServiceInterface interface {
	CreateBusiness(ctx context.Context, state *session.State, input CreateBusinessInput) (*models.Business, error)
}

type businessService struct {
	submitter store.Submitter
	logger    zerolog.Logger
	newID     func() uuid.UUID
}

// NewBusinessService creates a new business service
func NewBusinessService(submitter store.Submitter, logger zerolog.Logger) BusinessServiceInterface {
	return &businessService{
		submitter: submitter,
		logger:    logger.With().Str("component", "business_service").Logger(),
		newID:     uuid.New,
	}
}

// CreateBusiness files a business under the caller. A user's own business is
// active at once and becomes the session's active business; a business
// provisioned on behalf of someone else stays pending_claim under the
// administrator until that user claims it.
func (s *businessService) CreateBusiness(ctx context.Context, state *session.State, input CreateBusinessInput) (*models.Business, error) {
	if state == nil {
		return nil, errors.New("create business: no session")
	}
	identity := state.Identity()

	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, invalid("name", "%s", err.Error())
	}
	if input.GSTIN != nil {
		gstin := strings.ToUpper(strings.TrimSpace(*input.GSTIN))
		if err := common.ValidateGSTIN(gstin, "gstin"); err != nil {
			return nil, invalid("gstin", "%s", err.Error())
		}
		input.GSTIN = &gstin
	}
	if err := common.ValidateOptionalString(input.Address, "address", 500); err != nil {
		return nil, invalid("address", "%s", err.Error())
	}
	if err := common.ValidateOptionalString(input.Phone, "phone", 20); err != nil {
		return nil, invalid("phone", "%s", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	status := models.BusinessStatusActive
	createdBy := models.CreatedByUser
	if input.OnBehalf {
		if !identity.Admin {
			return nil, ErrAdminRequired
		}
		if email == "" {
			return nil, invalid("email", "email of the user the business is provisioned for is required")
		}
		if email == identity.Email {
			return nil, invalid("email", "cannot provision a business for yourself")
		}
		status = models.BusinessStatusPendingClaim
		createdBy = models.CreatedByAdmin
	} else if email == "" {
		email = identity.Email
	}

	ownerID := identity.ID
	business := &models.Business{
		ID:        s.newID(),
		OwnerID:   &ownerID,
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		GSTIN:     input.GSTIN,
		Address:   input.Address,
		Phone:     input.Phone,
		Status:    status,
		CreatedBy: createdBy,
	}

	if err := s.submitter.Submit(ctx, store.CreateBusiness{Business: business}); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	if status == models.BusinessStatusActive {
		state.SelectBusiness(business.ID)
	}

	s.logger.Info().
		Str("business_id", business.ID.String()).
		Str("status", string(status)).
		Str("created_by", string(createdBy)).
		Msg("business created")
	return business, nil
}
