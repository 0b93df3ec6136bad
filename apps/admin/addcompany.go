package main

import (
	"context"

	"github.com/hudumahq/huduma/apps"
	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
)

// addCompany provisions a new company or rotates an existing one's access key.
func (cli *commandLine) addCompany(name, email, key string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if name == "" || email == "" {
		return apps.NewArgumentError("name and email are required")
	}
	actor := access.Staff(0)

	if cmp, err := cli.companySvc.GetByName(ctx, name); err == nil {
		data := company.UpdateCompany{Name: name, ContactEmail: email, AccessKey: key}
		if err = data.Validate(ctx, cmp, cli.companySvc); err != nil {
			return err
		}
		_, err = cli.companySvc.Update(ctx, actor, cmp.ID, data)
		return err
	} else if err != company.ErrNotFound {
		return err
	}

	data := company.NewCompany{Name: name, ContactEmail: email, AccessKey: key}
	if err := data.Validate(ctx, cli.companySvc); err != nil {
		return err
	}
	_, err := cli.companySvc.Create(ctx, actor, data)
	return err
}
