package inmemdb

import (
	"context"
	"sort"

	"github.com/hudumahq/huduma/core/company"
)

type companyRepository struct {
	db *companyTable
}

var _ company.Repository = (*companyRepository)(nil) // interface compliance check

func NewCompanyRepository(db *DB) *companyRepository {
	return &companyRepository{db: db.company}
}

func (repo *companyRepository) query() []company.Company {
	companies := make([]company.Company, 0, len(repo.db.table))
	for _, cmp := range repo.db.table {
		companies = append(companies, *cmp)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies
}

func (repo *companyRepository) CheckNameUniqueness(ctx context.Context, name string, excluded ...company.Company) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cmp := range repo.query() {
		if cmp.Name != name {
			continue
		}
		var skip bool
		for _, excl := range excluded {
			if excl.ID == cmp.ID {
				skip = true
				break
			}
		}
		if !skip {
			return company.ErrNameExists
		}
	}
	return nil
}

func (repo *companyRepository) CreateCompany(ctx context.Context, cmp company.Company) (company.Company, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	cmp.ID = repo.db.pkCount
	repo.db.table[cmp.ID] = &cmp
	return cmp, nil
}

func (repo *companyRepository) GetCompanyByID(ctx context.Context, id int) (company.Company, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cmp, ok := repo.db.table[id]; ok {
		return *cmp, nil
	}
	return company.Company{}, company.ErrNotFound
}

func (repo *companyRepository) GetCompanyByName(ctx context.Context, name string) (company.Company, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cmp := range repo.query() {
		if cmp.Name == name {
			return cmp, nil
		}
	}
	return company.Company{}, company.ErrNotFound
}

func (repo *companyRepository) QueryAllCompanies(ctx context.Context) ([]company.Company, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *companyRepository) UpdateCompany(ctx context.Context, cmp company.Company, isActive *bool) (company.Company, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[cmp.ID]
	if !ok {
		return company.Company{}, company.ErrNotFound
	}
	if cmp.Name != "" {
		orig.Name = cmp.Name
	}
	if cmp.ContactEmail != "" {
		orig.ContactEmail = cmp.ContactEmail
	}
	if cmp.AccessKeyHash != nil {
		orig.AccessKeyHash = cmp.AccessKeyHash
	}
	if isActive != nil {
		orig.SetActive(*isActive)
	}
	orig.UpdatedAt = cmp.UpdatedAt

	repo.db.table[cmp.ID] = orig
	return *orig, nil
}
