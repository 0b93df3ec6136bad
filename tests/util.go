package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/core/completion"
	"github.com/hudumahq/huduma/core/project"
)

func CreateCompany(t *testing.T, repo company.Repository, name, email string, isActive bool) company.Company {
	t.Helper()
	now := time.Now().UTC()
	cmp := company.Company{
		Name:         name,
		ContactEmail: email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cmp.SetActive(isActive)
	cmp, err := repo.CreateCompany(context.Background(), cmp)
	if err != nil {
		t.Fatalf("CreateCompany() failed: %v", err)
	}
	return cmp
}

func CreateProject(t *testing.T, repo project.Repository, name string, assigned []int) project.Project {
	t.Helper()
	now := time.Now().UTC()
	prj, err := repo.CreateProject(context.Background(), project.Project{
		Name:               name,
		Status:             project.StatusActive,
		StartDate:          now,
		AssignedCompanyIDs: assigned,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return prj
}

func CreateSubProject(t *testing.T, repo project.Repository, projectID int, name string) project.SubProject {
	t.Helper()
	now := time.Now().UTC()
	sub, err := repo.CreateSubProject(context.Background(), project.SubProject{
		ProjectID: projectID,
		Name:      name,
		Status:    project.StatusActive,
		StartDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubProject() failed: %v", err)
	}
	return sub
}

func CreateTask(
	t *testing.T,
	repo project.Repository,
	projectID, subProjectID int,
	name string,
	weight float64,
	assigned []int,
) project.Task {
	t.Helper()
	now := time.Now().UTC()
	tsk, err := repo.CreateTask(context.Background(), project.Task{
		ProjectID:          projectID,
		SubProjectID:       subProjectID,
		Name:               name,
		Weight:             weight,
		Status:             project.StatusActive,
		AssignedCompanyIDs: assigned,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}

func CreateRequest(
	t *testing.T,
	repo completion.Repository,
	taskID, companyID int,
	status string,
	submittedAt ...time.Time,
) completion.Request {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(submittedAt) > 0 {
		tstamp = submittedAt[0].UTC()
	}
	req := completion.Request{
		Ref:           uuid.New().String(),
		TaskID:        taskID,
		CompanyID:     companyID,
		Justification: "All deliverables complete and verified on site.",
		EvidenceLabel: "site report",
		Status:        completion.StatusPending,
		SubmittedAt:   tstamp,
	}
	req, err := repo.CreateRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateRequest() failed: %v", err)
	}
	if status != completion.StatusPending {
		req, err = repo.DecideRequest(context.Background(), req.ID, status, tstamp.Add(time.Minute), "")
		if err != nil {
			t.Fatalf("DecideRequest() failed: %v", err)
		}
	}
	return req
}
