package project_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/completion"
	"github.com/hudumahq/huduma/core/project"
	inmemdb "github.com/hudumahq/huduma/storage/database/inmem"
	testutil "github.com/hudumahq/huduma/tests"
)

func setup(t *testing.T) (*project.Service, project.Repository, completion.Repository, *inmemdb.DB) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	prjRepo := inmemdb.NewProjectRepository(db)
	reqRepo := inmemdb.NewCompletionRepository(db)
	cmpRepo := inmemdb.NewCompanyRepository(db)
	svc := project.NewService(prjRepo, reqRepo, cmpRepo)
	return svc, prjRepo, reqRepo, db
}

func TestService_GetTree_grouped(t *testing.T) {
	svc, prjRepo, reqRepo, _ := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, prjRepo, "Warehouse Rollout", nil)
	subA := testutil.CreateSubProject(t, prjRepo, prj.ID, "Site Prep")
	subB := testutil.CreateSubProject(t, prjRepo, prj.ID, "Fit Out")
	t1 := testutil.CreateTask(t, prjRepo, prj.ID, subA.ID, "Survey", 10, nil)
	testutil.CreateTask(t, prjRepo, prj.ID, subA.ID, "Clear", 20, nil)
	testutil.CreateTask(t, prjRepo, prj.ID, subB.ID, "Racking", 25, nil)
	testutil.CreateTask(t, prjRepo, prj.ID, subB.ID, "Wiring", 45, nil)

	cmp := access.Company(7)
	testutil.CreateRequest(t, reqRepo, t1.ID, cmp.ID, completion.StatusApproved)

	tree, err := svc.GetTree(ctx, cmp, prj.ID)
	if err != nil {
		t.Fatalf("GetTree() failed: %v", err)
	}

	assert.Len(t, tree.SubProjects, 2)
	assert.Equal(t, subA.ID, tree.SubProjects[0].SubProject.ID)
	assert.Equal(t, subB.ID, tree.SubProjects[1].SubProject.ID)
	assert.Len(t, tree.SubProjects[0].Tasks, 2)
	assert.Len(t, tree.SubProjects[1].Tasks, 2)

	// 10 of 30 within the first group, 10 of 100 overall
	assert.Equal(t, 33, tree.SubProjects[0].Progress)
	assert.Equal(t, 0, tree.SubProjects[1].Progress)
	assert.Equal(t, 10, tree.Progress)
}

func TestService_GetTree_flat(t *testing.T) {
	svc, prjRepo, reqRepo, _ := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, prjRepo, "Fleet Audit", nil)
	t1 := testutil.CreateTask(t, prjRepo, prj.ID, 0, "Inventory", 50, nil)
	testutil.CreateTask(t, prjRepo, prj.ID, 0, "Inspect", 30, nil)
	t3 := testutil.CreateTask(t, prjRepo, prj.ID, 0, "Report", 20, nil)

	cmp := access.Company(3)
	testutil.CreateRequest(t, reqRepo, t1.ID, cmp.ID, completion.StatusApproved)
	testutil.CreateRequest(t, reqRepo, t3.ID, cmp.ID, completion.StatusApproved)

	tree, err := svc.GetTree(ctx, cmp, prj.ID)
	if err != nil {
		t.Fatalf("GetTree() failed: %v", err)
	}

	// one synthetic bucket, no grouping layer
	assert.Len(t, tree.SubProjects, 1)
	assert.Nil(t, tree.SubProjects[0].SubProject)
	assert.Len(t, tree.SubProjects[0].Tasks, 3)
	assert.Equal(t, 70, tree.SubProjects[0].Progress)
	assert.Equal(t, 70, tree.Progress)
}

func TestService_GetTree_directTasksBucket(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, prjRepo, "Mixed", nil)
	sub := testutil.CreateSubProject(t, prjRepo, prj.ID, "Grouped")
	testutil.CreateTask(t, prjRepo, prj.ID, sub.ID, "Grouped work", 60, nil)
	testutil.CreateTask(t, prjRepo, prj.ID, 0, "Direct work", 40, nil)

	tree, err := svc.GetTree(ctx, access.Staff(1), prj.ID)
	if err != nil {
		t.Fatalf("GetTree() failed: %v", err)
	}

	// direct tasks keep their own trailing bucket
	assert.Len(t, tree.SubProjects, 2)
	assert.NotNil(t, tree.SubProjects[0].SubProject)
	assert.Nil(t, tree.SubProjects[1].SubProject)
	assert.Len(t, tree.SubProjects[1].Tasks, 1)
}

func TestService_GetTree_prunesRestrictedLeaves(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, prjRepo, "Shared", nil)
	testutil.CreateTask(t, prjRepo, prj.ID, 0, "Public", 50, nil)
	testutil.CreateTask(t, prjRepo, prj.ID, 0, "Private", 50, []int{99})

	tree, err := svc.GetTree(ctx, access.Company(3), prj.ID)
	if err != nil {
		t.Fatalf("GetTree() failed: %v", err)
	}
	assert.Len(t, tree.SubProjects[0].Tasks, 1)
	assert.Equal(t, "Public", tree.SubProjects[0].Tasks[0].Name)

	// staff keeps both leaves
	tree, err = svc.GetTree(ctx, access.Staff(1), prj.ID)
	if err != nil {
		t.Fatalf("GetTree() failed: %v", err)
	}
	assert.Len(t, tree.SubProjects[0].Tasks, 2)
}

func TestService_GetProject_hidesExistence(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, prjRepo, "Restricted", []int{42})

	// absent and invisible are indistinguishable
	if _, err := svc.GetProject(ctx, access.Company(3), 999); err != project.ErrNotFound {
		t.Errorf("GetProject(absent) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetProject(ctx, access.Company(3), prj.ID); err != project.ErrNotFound {
		t.Errorf("GetProject(invisible) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetTree(ctx, access.Company(3), prj.ID); err != project.ErrNotFound {
		t.Errorf("GetTree(invisible) error = %v, want ErrNotFound", err)
	}

	// the assigned company and staff both resolve it
	if _, err := svc.GetProject(ctx, access.Company(42), prj.ID); err != nil {
		t.Errorf("GetProject(assigned) failed: %v", err)
	}
	if _, err := svc.GetProject(ctx, access.Staff(1), prj.ID); err != nil {
		t.Errorf("GetProject(staff) failed: %v", err)
	}
}

func TestService_QueryVisible(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()

	testutil.CreateProject(t, prjRepo, "Public", nil)
	testutil.CreateProject(t, prjRepo, "Mine", []int{3})
	testutil.CreateProject(t, prjRepo, "Theirs", []int{4})

	projects, err := svc.QueryVisible(ctx, access.Company(3))
	if err != nil {
		t.Fatalf("QueryVisible() failed: %v", err)
	}
	names := make([]string, 0, len(projects))
	for _, prj := range projects {
		names = append(names, prj.Name)
	}
	assert.ElementsMatch(t, []string{"Public", "Mine"}, names)

	projects, err = svc.QueryVisible(ctx, access.Staff(1))
	if err != nil {
		t.Fatalf("QueryVisible() failed: %v", err)
	}
	assert.Len(t, projects, 3)
}

func TestService_GetCompanyTree_scope(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, prjRepo, "Scoped", nil)
	testutil.CreateTask(t, prjRepo, prj.ID, 0, "Work", 100, nil)

	// a company may only request its own perspective
	if _, err := svc.GetCompanyTree(ctx, access.Company(3), prj.ID, 4); err != project.ErrNotAssigned {
		t.Errorf("GetCompanyTree(other company) error = %v, want ErrNotAssigned", err)
	}
	if _, err := svc.GetCompanyTree(ctx, access.Company(3), prj.ID, 3); err != nil {
		t.Errorf("GetCompanyTree(own) failed: %v", err)
	}
	// staff may inspect anyone
	if _, err := svc.GetCompanyTree(ctx, access.Staff(1), prj.ID, 4); err != nil {
		t.Errorf("GetCompanyTree(staff) failed: %v", err)
	}
}

func TestService_CreateTask_subProjectMustBelong(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()
	staff := access.Staff(1)

	prjA := testutil.CreateProject(t, prjRepo, "A", nil)
	prjB := testutil.CreateProject(t, prjRepo, "B", nil)
	subB := testutil.CreateSubProject(t, prjRepo, prjB.ID, "B1")

	_, err := svc.CreateTask(ctx, staff, project.NewTask{
		ProjectID:    prjA.ID,
		SubProjectID: subB.ID,
		Name:         "Orphan",
		Weight:       10,
		Status:       project.StatusActive,
	})
	if err != project.ErrNotFound {
		t.Errorf("CreateTask(cross-project sub) error = %v, want ErrNotFound", err)
	}
}

func TestService_staffOnlyMutations(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()
	cmp := access.Company(3)

	if _, err := svc.CreateProject(ctx, cmp, project.NewProject{Name: "X", Status: project.StatusActive}); err != project.ErrNotAssigned {
		t.Errorf("CreateProject(company) error = %v, want ErrNotAssigned", err)
	}
	if _, err := svc.UpdateProject(ctx, cmp, 1, project.UpdateProject{}); err != project.ErrNotAssigned {
		t.Errorf("UpdateProject(company) error = %v, want ErrNotAssigned", err)
	}
	if _, err := svc.Leaderboard(ctx, cmp); err != project.ErrNotAssigned {
		t.Errorf("Leaderboard(company) error = %v, want ErrNotAssigned", err)
	}
}

func TestService_UpdateSubProject(t *testing.T) {
	svc, prjRepo, _, _ := setup(t)
	ctx := context.Background()
	staff := access.Staff(1)

	prj := testutil.CreateProject(t, prjRepo, "Rollout", nil)
	sub := testutil.CreateSubProject(t, prjRepo, prj.ID, "Site Prep")

	if _, err := svc.UpdateSubProject(ctx, access.Company(3), sub.ID, project.UpdateSubProject{Name: "Nope"}); err != project.ErrNotAssigned {
		t.Errorf("UpdateSubProject(company) error = %v, want ErrNotAssigned", err)
	}

	data := project.UpdateSubProject{Name: "Groundworks", Status: project.StatusCompleted}
	if err := data.Validate(sub); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	got, err := svc.UpdateSubProject(ctx, staff, sub.ID, data)
	if err != nil {
		t.Fatalf("UpdateSubProject() failed: %v", err)
	}
	assert.Equal(t, "Groundworks", got.Name)
	assert.Equal(t, project.StatusCompleted, got.Status)
	assert.Equal(t, prj.ID, got.ProjectID)

	// omitted fields keep their stored values
	data = project.UpdateSubProject{}
	if err = data.Validate(got); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if got, err = svc.UpdateSubProject(ctx, staff, sub.ID, data); err != nil {
		t.Fatalf("UpdateSubProject() failed: %v", err)
	}
	assert.Equal(t, "Groundworks", got.Name)
	assert.Equal(t, project.StatusCompleted, got.Status)

	if _, err = svc.UpdateSubProject(ctx, staff, 999, project.UpdateSubProject{Name: "Gone"}); err != project.ErrNotFound {
		t.Errorf("UpdateSubProject(absent) error = %v, want ErrNotFound", err)
	}
}

func TestService_Leaderboard(t *testing.T) {
	svc, prjRepo, reqRepo, db := setup(t)
	ctx := context.Background()
	cmpRepo := inmemdb.NewCompanyRepository(db)

	acme := testutil.CreateCompany(t, cmpRepo, "Acme", "ops@acme.test", true)
	bolt := testutil.CreateCompany(t, cmpRepo, "Bolt", "ops@bolt.test", true)
	testutil.CreateCompany(t, cmpRepo, "Gone", "ops@gone.test", false)

	prj := testutil.CreateProject(t, prjRepo, "Shared", nil)
	t1 := testutil.CreateTask(t, prjRepo, prj.ID, 0, "One", 50, nil)
	t2 := testutil.CreateTask(t, prjRepo, prj.ID, 0, "Two", 50, nil)

	testutil.CreateRequest(t, reqRepo, t1.ID, acme.ID, completion.StatusApproved)
	testutil.CreateRequest(t, reqRepo, t2.ID, acme.ID, completion.StatusApproved)
	testutil.CreateRequest(t, reqRepo, t1.ID, bolt.ID, completion.StatusApproved)

	entries, err := svc.Leaderboard(ctx, access.Staff(1))
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}

	// inactive companies excluded; sorted by progress descending
	assert.Len(t, entries, 2)
	assert.Equal(t, acme.ID, entries[0].CompanyID)
	assert.Equal(t, 100, entries[0].Progress)
	assert.Equal(t, bolt.ID, entries[1].CompanyID)
	assert.Equal(t, 50, entries[1].Progress)
}
