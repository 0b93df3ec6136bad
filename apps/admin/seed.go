package main

import (
	"context"
	"time"

	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/core/project"
)

// seed loads a small local fixture set: two companies, one structured project
// and one flat project. Intended for DEV databases only; it does not guard
// against duplicates.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()
	actor := access.Staff(0)

	mkCompany := func(name, email string) (company.Company, error) {
		return cli.companySvc.Create(ctx, actor, company.NewCompany{Name: name, ContactEmail: email})
	}

	acme, err := mkCompany("Acme Logistics", "ops@acme.test")
	if err != nil {
		return err
	}
	bolt, err := mkCompany("Bolt Couriers", "dispatch@bolt.test")
	if err != nil {
		return err
	}

	prj, err := cli.projectRepo.CreateProject(ctx, project.Project{
		Name:        "Warehouse Rollout",
		Description: "Regional warehouse onboarding",
		Status:      project.StatusActive,
		StartDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}

	sub, err := cli.projectRepo.CreateSubProject(ctx, project.SubProject{
		ProjectID: prj.ID,
		Name:      "Site Preparation",
		Status:    project.StatusActive,
		StartDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	tasks := []project.Task{
		{ProjectID: prj.ID, SubProjectID: sub.ID, Name: "Survey site", Weight: 40, Status: project.StatusActive},
		{ProjectID: prj.ID, SubProjectID: sub.ID, Name: "Install racking", Weight: 60, Status: project.StatusActive},
		{ProjectID: prj.ID, Name: "Handover review", Weight: 100, Status: project.StatusActive,
			AssignedCompanyIDs: []int{acme.ID}},
	}
	for _, tsk := range tasks {
		tsk.CreatedAt, tsk.UpdatedAt = now, now
		if _, err = cli.projectRepo.CreateTask(ctx, tsk); err != nil {
			return err
		}
	}

	// flat project restricted to one company
	flat, err := cli.projectRepo.CreateProject(ctx, project.Project{
		Name:               "Fleet Audit",
		Status:             project.StatusActive,
		StartDate:          now,
		AssignedCompanyIDs: []int{bolt.ID},
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return err
	}
	_, err = cli.projectRepo.CreateTask(ctx, project.Task{
		ProjectID: flat.ID,
		Name:      "Inventory vehicles",
		Weight:    100,
		Status:    project.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
