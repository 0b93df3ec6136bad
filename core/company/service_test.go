package company_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
	inmemdb "github.com/hudumahq/huduma/storage/database/inmem"
	testutil "github.com/hudumahq/huduma/tests"
)

func setup(t *testing.T) (*company.Service, company.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewCompanyRepository(db)
	return company.NewService(repo), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	data := company.NewCompany{Name: "Acme Logistics", ContactEmail: "ops@acme.test"}
	if err := data.Validate(ctx, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	// company actors cannot provision
	if _, err := svc.Create(ctx, access.Company(1), data); err != company.ErrNotAssigned {
		t.Errorf("Create(company) error = %v, want ErrNotAssigned", err)
	}

	cmp, err := svc.Create(ctx, access.Staff(1), data)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	assert.Equal(t, "Acme Logistics", cmp.Name)
	assert.True(t, cmp.Active())
	assert.Empty(t, cmp.AccessKeyHash)

	// duplicate name rejected with field detail
	dup := company.NewCompany{Name: "Acme Logistics", ContactEmail: "other@acme.test"}
	err = dup.Validate(ctx, svc)
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Validate(duplicate) error = %v, want *core.ValidationError", err)
	}
	if assert.Len(t, vErr.Fields, 1) {
		assert.Equal(t, "name", vErr.Fields[0].Field)
	}
}

func TestService_Create_withAccessKey(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	data := company.NewCompany{
		Name:         "Bolt Couriers",
		ContactEmail: "dispatch@bolt.test",
		AccessKey:    "j8#kP2!vQr",
	}
	if err := data.Validate(ctx, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	cmp, err := svc.Create(ctx, access.Staff(1), data)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	assert.NoError(t, cmp.CheckAccessKey("j8#kP2!vQr"))
	assert.Error(t, cmp.CheckAccessKey("wrong"))
}

func TestNewCompany_accessKeyPolicy(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "no key is fine", key: ""},
		{name: "strong key", key: "j8#kP2!vQr"},
		{name: "too short", key: "a1!b2", wantErr: true},
		{name: "whitespace", key: "has space01", wantErr: true},
		{name: "all numeric", key: "123456789012", wantErr: true},
		{name: "similar to name", key: "AcmeLogistics", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := company.NewCompany{
				Name:         "Acme Logistics",
				ContactEmail: "ops@acme.test",
				AccessKey:    tt.key,
			}
			err := data.Validate(ctx, svc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	staff := access.Staff(1)

	cmp := testutil.CreateCompany(t, repo, "Acme", "ops@acme.test", true)
	testutil.CreateCompany(t, repo, "Bolt", "ops@bolt.test", true)

	// renaming onto an existing name is rejected
	data := company.UpdateCompany{Name: "Bolt"}
	err := data.Validate(ctx, cmp, svc)
	assert.Error(t, err)

	// deactivation via explicit pointer
	inactive := false
	data = company.UpdateCompany{IsActive: &inactive}
	if err = data.Validate(ctx, cmp, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	updated, err := svc.Update(ctx, staff, cmp.ID, data)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	assert.False(t, updated.Active())
	assert.Equal(t, "Acme", updated.Name) // untouched fields survive

	// nil IsActive leaves the flag unchanged
	data = company.UpdateCompany{ContactEmail: "new@acme.test"}
	if err = data.Validate(ctx, updated, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	updated, err = svc.Update(ctx, staff, cmp.ID, data)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	assert.False(t, updated.Active())
	assert.Equal(t, "new@acme.test", updated.ContactEmail)
}

func TestService_QueryAll(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateCompany(t, repo, "Acme", "ops@acme.test", true)
	testutil.CreateCompany(t, repo, "Bolt", "ops@bolt.test", false)

	if _, err := svc.QueryAll(ctx, access.Company(1)); err != company.ErrNotAssigned {
		t.Errorf("QueryAll(company) error = %v, want ErrNotAssigned", err)
	}
	companies, err := svc.QueryAll(ctx, access.Staff(1))
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	assert.Len(t, companies, 2)
}
