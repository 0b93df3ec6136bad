package company

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hudumahq/huduma/core"
)

// Company is the identity unit that owns completion submissions and is an
// assignment target on projects and tasks. Its identity is immutable once
// referenced elsewhere; deactivation is the only retirement path.
type Company struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	ContactEmail  string    `json:"contact_email"`
	IsActive      *bool     `json:"is_active"`
	AccessKeyHash []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (c *Company) SetAccessKey(key string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.AccessKeyHash = hash
	return nil
}

func (c *Company) CheckAccessKey(key string) error {
	return bcrypt.CompareHashAndPassword(c.AccessKeyHash, []byte(key))
}

func (c *Company) SetActive(active bool) {
	c.IsActive = &active
}

func (c *Company) Active() bool {
	return c.IsActive != nil && *c.IsActive
}

// NewCompany contains information needed to provision a new Company.
type NewCompany struct {
	Name         string `json:"name" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	AccessKey    string `json:"access_key" validate:"omitempty"`
}

func (nc *NewCompany) Validate(ctx context.Context, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.ContactEmail = core.CleanString(nc.ContactEmail, true /* lower */)

	if err := core.Validate.Struct(nc); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return svc.checkUniqueness(ctx, nc.Name)
}

// UpdateCompany defines what information may be provided to modify an existing Company.
type UpdateCompany struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	IsActive     *bool  `json:"is_active"`
	AccessKey    string `json:"access_key" validate:"omitempty"`
}

func (uc *UpdateCompany) Validate(ctx context.Context, orig Company, svc *Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}

	email := core.CleanString(uc.ContactEmail, true /* lower */)
	if email != "" {
		uc.ContactEmail = email
	} else {
		uc.ContactEmail = orig.ContactEmail
	}

	if err := core.Validate.Struct(uc); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return svc.checkUniqueness(ctx, uc.Name, orig)
}
