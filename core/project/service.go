package project

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
)

var (
	// errors
	ErrNotFound    = errors.New("project not found")
	ErrNotAssigned = errors.New("not enough rights")
)

type (
	Repository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		GetProjectByID(ctx context.Context, id int) (Project, error)
		QueryAllProjects(ctx context.Context) ([]Project, error)
		UpdateProject(ctx context.Context, prj Project, assigned []int) (Project, error)

		CreateSubProject(ctx context.Context, sub SubProject) (SubProject, error)
		GetSubProjectByID(ctx context.Context, id int) (SubProject, error)
		// QuerySubProjects returns a project's sub-projects ordered by ID.
		QuerySubProjects(ctx context.Context, projectID int) ([]SubProject, error)
		UpdateSubProject(ctx context.Context, sub SubProject) (SubProject, error)

		CreateTask(ctx context.Context, tsk Task) (Task, error)
		GetTaskByID(ctx context.Context, id int) (Task, error)
		// QueryTasks returns a project's tasks (all sub-projects and direct) ordered by ID.
		QueryTasks(ctx context.Context, projectID int) ([]Task, error)
		UpdateTask(ctx context.Context, tsk Task, assigned []int) (Task, error)
	}

	// ApprovalSource reports which of the given tasks count as done.
	// A task counts for a company when its most recent completion request for
	// that company is approved; companyID 0 means "approved for any company".
	ApprovalSource interface {
		ApprovedTaskIDs(ctx context.Context, taskIDs []int, companyID int) (map[int]bool, error)
	}

	// CompanySource lists companies for the leaderboard scope.
	CompanySource interface {
		QueryAllCompanies(ctx context.Context) ([]company.Company, error)
	}

	Service struct {
		repo      Repository
		approvals ApprovalSource
		companies CompanySource
	}
)

func NewService(repo Repository, approvals ApprovalSource, companies CompanySource) *Service {
	return &Service{repo: repo, approvals: approvals, companies: companies}
}

// SubProjectNode is one bucket of the normalized tree. SubProject is nil for
// the synthetic bucket of a flat project, so downstream aggregation never
// special-cases the flat form.
type SubProjectNode struct {
	SubProject *SubProject `json:"sub_project"`
	Tasks      []Task      `json:"tasks"`
	Progress   int         `json:"progress"`
}

type ProjectTree struct {
	Project     Project          `json:"project"`
	SubProjects []SubProjectNode `json:"sub_projects"`
	Progress    int              `json:"progress"`
}

type LeaderboardEntry struct {
	CompanyID   int    `json:"company_id"`
	CompanyName string `json:"company_name"`
	Progress    int    `json:"progress"`
}

// Admin mutations (staff only)

func (svc *Service) CreateProject(ctx context.Context, actor access.Actor, np NewProject) (Project, error) {
	if !actor.IsStaff() {
		return Project{}, ErrNotAssigned
	}
	now := time.Now().UTC()
	prj := Project{
		Name:               np.Name,
		Description:        np.Description,
		StartDate:          np.StartDate,
		EndDate:            np.EndDate,
		Status:             np.Status,
		AssignedCompanyIDs: np.AssignedCompanyIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return svc.repo.CreateProject(ctx, prj)
}

func (svc *Service) UpdateProject(ctx context.Context, actor access.Actor, id int, up UpdateProject) (Project, error) {
	if !actor.IsStaff() {
		return Project{}, ErrNotAssigned
	}
	prj := Project{
		ID:          id,
		Name:        up.Name,
		Description: up.Description,
		StartDate:   up.StartDate,
		EndDate:     up.EndDate,
		Status:      up.Status,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateProject(ctx, prj, up.AssignedCompanyIDs)
}

func (svc *Service) CreateSubProject(ctx context.Context, actor access.Actor, ns NewSubProject) (SubProject, error) {
	if !actor.IsStaff() {
		return SubProject{}, ErrNotAssigned
	}
	if _, err := svc.repo.GetProjectByID(ctx, ns.ProjectID); err != nil {
		return SubProject{}, err
	}
	now := time.Now().UTC()
	sub := SubProject{
		ProjectID:   ns.ProjectID,
		Name:        ns.Name,
		Description: ns.Description,
		Status:      ns.Status,
		StartDate:   ns.StartDate,
		EndDate:     ns.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubProject(ctx, sub)
}

func (svc *Service) UpdateSubProject(ctx context.Context, actor access.Actor, id int, us UpdateSubProject) (SubProject, error) {
	if !actor.IsStaff() {
		return SubProject{}, ErrNotAssigned
	}
	sub := SubProject{
		ID:          id,
		Name:        us.Name,
		Description: us.Description,
		Status:      us.Status,
		StartDate:   us.StartDate,
		EndDate:     us.EndDate,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateSubProject(ctx, sub)
}

func (svc *Service) CreateTask(ctx context.Context, actor access.Actor, nt NewTask) (Task, error) {
	if !actor.IsStaff() {
		return Task{}, ErrNotAssigned
	}
	if _, err := svc.repo.GetProjectByID(ctx, nt.ProjectID); err != nil {
		return Task{}, err
	}
	if nt.SubProjectID != 0 {
		sub, err := svc.repo.GetSubProjectByID(ctx, nt.SubProjectID)
		if err != nil {
			return Task{}, err
		}
		if sub.ProjectID != nt.ProjectID {
			return Task{}, ErrNotFound
		}
	}
	now := time.Now().UTC()
	tsk := Task{
		ProjectID:          nt.ProjectID,
		SubProjectID:       nt.SubProjectID,
		Name:               nt.Name,
		Description:        nt.Description,
		Weight:             nt.Weight,
		Status:             nt.Status,
		AssignedCompanyIDs: nt.AssignedCompanyIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return svc.repo.CreateTask(ctx, tsk)
}

func (svc *Service) UpdateTask(ctx context.Context, actor access.Actor, id int, ut UpdateTask) (Task, error) {
	if !actor.IsStaff() {
		return Task{}, ErrNotAssigned
	}
	tsk := Task{
		ID:          id,
		Name:        ut.Name,
		Description: ut.Description,
		Weight:      ut.Weight,
		Status:      ut.Status,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateTask(ctx, tsk, ut.AssignedCompanyIDs)
}

// GetTask returns a single task by ID with no visibility filter applied;
// reserved for the staff administration surface.
func (svc *Service) GetTask(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

// GetSubProject returns a single sub-project by ID with no visibility filter
// applied; reserved for the staff administration surface.
func (svc *Service) GetSubProject(ctx context.Context, id int) (SubProject, error) {
	return svc.repo.GetSubProjectByID(ctx, id)
}

// Read paths

// QueryVisible returns all projects the actor may see.
func (svc *Service) QueryVisible(ctx context.Context, actor access.Actor) ([]Project, error) {
	projects, err := svc.repo.QueryAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Project, 0, len(projects))
	for _, prj := range projects {
		if access.Visible(actor, prj.AssignedCompanyIDs) {
			visible = append(visible, prj)
		}
	}
	return visible, nil
}

// GetProject returns a single project, or ErrNotFound when it does not exist
// OR when the actor may not see it. The two cases are intentionally
// indistinguishable to the caller.
func (svc *Service) GetProject(ctx context.Context, actor access.Actor, id int) (Project, error) {
	prj, err := svc.repo.GetProjectByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if !access.Visible(actor, prj.AssignedCompanyIDs) {
		return Project{}, ErrNotFound
	}
	return prj, nil
}

// GetTree loads the normalized project tree for the actor's own perspective:
// leaves are pruned to what the actor may see and progress is computed from
// the actor's company approvals (any company when the actor is staff).
func (svc *Service) GetTree(ctx context.Context, actor access.Actor, projectID int) (*ProjectTree, error) {
	companyID := 0
	if actor.IsCompany() {
		companyID = actor.ID
	}
	return svc.loadTree(ctx, actor, projectID, companyID)
}

// GetCompanyTree loads the project tree as seen by the given company, with
// progress computed from that company's approvals. Staff may inspect any
// company; a company actor may only request its own.
func (svc *Service) GetCompanyTree(ctx context.Context, actor access.Actor, projectID, companyID int) (*ProjectTree, error) {
	if !actor.IsStaff() && actor.ID != companyID {
		return nil, ErrNotAssigned
	}
	return svc.loadTree(ctx, access.Company(companyID), projectID, companyID)
}

func (svc *Service) loadTree(ctx context.Context, viewer access.Actor, projectID, companyID int) (*ProjectTree, error) {
	prj, err := svc.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.Visible(viewer, prj.AssignedCompanyIDs) {
		return nil, ErrNotFound
	}

	subs, err := svc.repo.QuerySubProjects(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := svc.repo.QueryTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// prune leaves the viewer may not see
	visible := make([]Task, 0, len(tasks))
	taskIDs := make([]int, 0, len(tasks))
	for _, tsk := range tasks {
		if access.Visible(viewer, tsk.AssignedCompanyIDs) {
			visible = append(visible, tsk)
			taskIDs = append(taskIDs, tsk.ID)
		}
	}

	approved := map[int]bool{}
	if len(taskIDs) > 0 {
		if approved, err = svc.approvals.ApprovedTaskIDs(ctx, taskIDs, companyID); err != nil {
			return nil, err
		}
	}

	tree := &ProjectTree{Project: prj}
	bySub := make(map[int][]Task, len(subs))
	for _, tsk := range visible {
		bySub[tsk.SubProjectID] = append(bySub[tsk.SubProjectID], tsk)
	}

	if len(subs) == 0 {
		// flat project: one synthetic bucket so downstream logic never
		// special-cases the missing grouping layer
		tree.SubProjects = []SubProjectNode{{
			SubProject: nil,
			Tasks:      visible,
			Progress:   Progress(visible, approved),
		}}
	} else {
		tree.SubProjects = make([]SubProjectNode, 0, len(subs)+1)
		for i := range subs {
			sub := subs[i]
			node := SubProjectNode{
				SubProject: &sub,
				Tasks:      bySub[sub.ID],
				Progress:   Progress(bySub[sub.ID], approved),
			}
			tree.SubProjects = append(tree.SubProjects, node)
		}
		// tasks hanging directly off the project keep their own bucket
		if direct := bySub[0]; len(direct) > 0 {
			tree.SubProjects = append(tree.SubProjects, SubProjectNode{
				SubProject: nil,
				Tasks:      direct,
				Progress:   Progress(direct, approved),
			})
		}
	}

	tree.Progress = Progress(visible, approved)
	return tree, nil
}

// Leaderboard computes each active company's completion percentage across
// all projects it participates in. Staff only.
func (svc *Service) Leaderboard(ctx context.Context, actor access.Actor) ([]LeaderboardEntry, error) {
	if !actor.IsStaff() {
		return nil, ErrNotAssigned
	}

	companies, err := svc.companies.QueryAllCompanies(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := svc.repo.QueryAllProjects(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(companies))
	for _, cmp := range companies {
		if !cmp.Active() {
			continue
		}
		viewer := access.Company(cmp.ID)

		var scope []Task
		var taskIDs []int
		for _, prj := range projects {
			if !access.Visible(viewer, prj.AssignedCompanyIDs) {
				continue
			}
			tasks, err := svc.repo.QueryTasks(ctx, prj.ID)
			if err != nil {
				return nil, err
			}
			for _, tsk := range tasks {
				if access.Visible(viewer, tsk.AssignedCompanyIDs) {
					scope = append(scope, tsk)
					taskIDs = append(taskIDs, tsk.ID)
				}
			}
		}

		approved := map[int]bool{}
		if len(taskIDs) > 0 {
			if approved, err = svc.approvals.ApprovedTaskIDs(ctx, taskIDs, cmp.ID); err != nil {
				return nil, err
			}
		}
		entries = append(entries, LeaderboardEntry{
			CompanyID:   cmp.ID,
			CompanyName: cmp.Name,
			Progress:    Progress(scope, approved),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Progress != entries[j].Progress {
			return entries[i].Progress > entries[j].Progress
		}
		return entries[i].CompanyID < entries[j].CompanyID
	})
	return entries, nil
}
