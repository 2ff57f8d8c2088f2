package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessStatus tracks whether a business profile is usable by its owner
type BusinessStatus string

const (
	BusinessStatusPendingClaim BusinessStatus = "pending_claim"
	BusinessStatusActive       BusinessStatus = "active"
	BusinessStatusDisabled     BusinessStatus = "disabled"
)

// CreatedBy records who provisioned a business profile
type CreatedBy string

const (
	CreatedByAdmin CreatedBy = "admin"
	CreatedByUser  CreatedBy = "user"
)

// Business is a seller profile. A pending_claim business was provisioned by an
// administrator for a user who has not registered yet.
type Business struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	OwnerID   *uuid.UUID     `json:"owner_id" db:"owner_id"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	GSTIN     *string        `json:"gstin" db:"gstin"`
	Address   *string        `json:"address" db:"address"`
	Phone     *string        `json:"phone" db:"phone"`
	Status    BusinessStatus `json:"status" db:"status"`
	CreatedBy CreatedBy      `json:"created_by" db:"created_by"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

type Client struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OwnerID        uuid.UUID     `json:"owner_id" db:"owner_id"`
	BusinessID     *uuid.UUID    `json:"business_id" db:"business_id"`
	Name           string        `json:"name" db:"name"`
	Email          *string       `json:"email" db:"email"`
	GSTIN          *string       `json:"gstin" db:"gstin"`
	Address        *string       `json:"address" db:"address"`
	PaymentTerms   *PaymentTerms `json:"payment_terms" db:"payment_terms"`
	CustomTermDays *int          `json:"custom_term_days" db:"custom_term_days"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// Identity is the authenticated end user as supplied by the identity provider.
// Admin identities may provision businesses on behalf of other users.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Admin bool      `json:"admin,omitempty"`
}
