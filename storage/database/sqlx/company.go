package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/company"
)

type companyRow struct {
	ID            int       `db:"id"`
	Name          string    `db:"companyname"`
	ContactEmail  string    `db:"contact_email"`
	IsActive      null.Bool `db:"isactive"`
	AccessKeyHash []byte    `db:"access_key_hash"`
	CreatedAt     null.Time `db:"created_at"`
	UpdatedAt     null.Time `db:"updated_at"`
}

func (r companyRow) toCompany() company.Company {
	return company.Company{
		ID:            r.ID,
		Name:          r.Name,
		ContactEmail:  r.ContactEmail,
		IsActive:      r.IsActive.Ptr(),
		AccessKeyHash: r.AccessKeyHash,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

type companyRepository struct {
	db core.DBExecutor
}

var _ company.Repository = (*companyRepository)(nil) // interface compliance check

func NewCompanyRepository(db core.DBExecutor) *companyRepository {
	return &companyRepository{db: db}
}

func (repo companyRepository) CheckNameUniqueness(ctx context.Context, name string, excluded ...company.Company) error {
	query := `SELECT EXISTS (SELECT 1 FROM company WHERE companyname = ?)`
	args := []interface{}{name}

	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, cmp := range excluded {
			ids = append(ids, cmp.ID)
		}
		var err error
		query, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM company WHERE companyname = ? AND id NOT IN (?))`, name, ids)
		if err != nil {
			return errors.Wrap(err, "checking company uniqueness")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking company uniqueness")
	}
	if exists {
		return company.ErrNameExists
	}
	return nil
}

func (repo companyRepository) CreateCompany(ctx context.Context, cmp company.Company) (company.Company, error) {
	query := `
		INSERT INTO company (companyname, contact_email, isactive, access_key_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		cmp.Name, cmp.ContactEmail, null.BoolFromPtr(cmp.IsActive), cmp.AccessKeyHash,
		cmp.CreatedAt.UTC(), cmp.UpdatedAt.UTC(),
	).Scan(&cmp.ID)
	if err != nil {
		if isUniqueViolation(err, "") {
			return company.Company{}, company.ErrNameExists
		}
		return company.Company{}, errors.Wrap(err, "inserting company")
	}
	return cmp, nil
}

func (repo companyRepository) GetCompanyByID(ctx context.Context, id int) (company.Company, error) {
	var row companyRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM company WHERE id = $1`, id); err != nil {
		return company.Company{}, trapNoRowsErr(err, company.ErrNotFound, "finding company by ID")
	}
	return row.toCompany(), nil
}

func (repo companyRepository) GetCompanyByName(ctx context.Context, name string) (company.Company, error) {
	var row companyRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM company WHERE companyname = $1`, name); err != nil {
		return company.Company{}, trapNoRowsErr(err, company.ErrNotFound, "finding company by name")
	}
	return row.toCompany(), nil
}

func (repo companyRepository) QueryAllCompanies(ctx context.Context) ([]company.Company, error) {
	var rows []companyRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM company ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying companies")
	}
	companies := make([]company.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, row.toCompany())
	}
	return companies, nil
}

func (repo companyRepository) UpdateCompany(ctx context.Context, cmp company.Company, isActive *bool) (company.Company, error) {
	query := `
		UPDATE company
		SET companyname     = $1,
		    contact_email   = $2,
		    isactive        = COALESCE($3, isactive),
		    access_key_hash = COALESCE($4, access_key_hash),
		    updated_at      = $5
		WHERE id = $6`
	var keyHash []byte
	if len(cmp.AccessKeyHash) > 0 {
		keyHash = cmp.AccessKeyHash
	}
	res, err := repo.db.ExecContext(ctx, query,
		cmp.Name, cmp.ContactEmail, null.BoolFromPtr(isActive), keyHash,
		cmp.UpdatedAt.UTC(), cmp.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return company.Company{}, company.ErrNameExists
		}
		return company.Company{}, errors.Wrap(err, "updating company")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return company.Company{}, company.ErrNotFound
	}
	return repo.GetCompanyByID(ctx, cmp.ID)
}
