package company

import (
	"context"
	"errors"
	"time"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
)

var (
	// errors
	ErrNotFound    = errors.New("company not found")
	ErrNameExists  = errors.New("a company with this name already exists")
	ErrNotAssigned = errors.New("not enough rights")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excluded ...Company) error
		CreateCompany(ctx context.Context, cmp Company) (Company, error)
		GetCompanyByID(ctx context.Context, id int) (Company, error)
		GetCompanyByName(ctx context.Context, name string) (Company, error)
		QueryAllCompanies(ctx context.Context) ([]Company, error)
		UpdateCompany(ctx context.Context, cmp Company, isActive *bool) (Company, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, name string, excluded ...Company) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, excluded...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create provisions a new active Company. Staff only.
func (svc *Service) Create(ctx context.Context, actor access.Actor, nc NewCompany) (Company, error) {
	if !actor.IsStaff() {
		return Company{}, ErrNotAssigned
	}
	now := time.Now().UTC()
	cmp := Company{
		Name:         nc.Name,
		ContactEmail: nc.ContactEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cmp.SetActive(true)
	if nc.AccessKey != "" {
		if err := cmp.SetAccessKey(nc.AccessKey); err != nil {
			return Company{}, err
		}
	}
	return svc.repo.CreateCompany(ctx, cmp)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Company, error) {
	return svc.repo.GetCompanyByID(ctx, id)
}

func (svc *Service) GetByName(ctx context.Context, name string) (Company, error) {
	return svc.repo.GetCompanyByName(ctx, core.CleanString(name))
}

func (svc *Service) QueryAll(ctx context.Context, actor access.Actor) ([]Company, error) {
	if !actor.IsStaff() {
		return nil, ErrNotAssigned
	}
	return svc.repo.QueryAllCompanies(ctx)
}

// Update modifies a Company. Staff only.
func (svc *Service) Update(ctx context.Context, actor access.Actor, id int, uc UpdateCompany) (Company, error) {
	if !actor.IsStaff() {
		return Company{}, ErrNotAssigned
	}
	cmp := Company{
		ID:           id,
		Name:         uc.Name,
		ContactEmail: uc.ContactEmail,
		UpdatedAt:    time.Now().UTC(),
	}
	if uc.AccessKey != "" {
		if err := cmp.SetAccessKey(uc.AccessKey); err != nil {
			return Company{}, err
		}
	}
	return svc.repo.UpdateCompany(ctx, cmp, uc.IsActive)
}
