package inmemdb

import (
	"context"
	"sort"

	"github.com/hudumahq/huduma/core/project"
)

type projectRepository struct {
	projects    *projectTable
	subProjects *subProjectTable
	tasks       *taskTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{
		projects:    db.project,
		subProjects: db.subProject,
		tasks:       db.task,
	}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.projects.Lock()
	defer repo.projects.Unlock()

	repo.projects.pkCount++
	prj.ID = repo.projects.pkCount
	repo.projects.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id int) (project.Project, error) {
	repo.projects.RLock()
	defer repo.projects.RUnlock()

	if prj, ok := repo.projects.table[id]; ok {
		return *prj, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	repo.projects.RLock()
	defer repo.projects.RUnlock()

	projects := make([]project.Project, 0, len(repo.projects.table))
	for _, prj := range repo.projects.table {
		projects = append(projects, *prj)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project, assigned []int) (project.Project, error) {
	repo.projects.Lock()
	defer repo.projects.Unlock()

	orig, ok := repo.projects.table[prj.ID]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	if prj.Name != "" {
		orig.Name = prj.Name
	}
	orig.Description = prj.Description
	if prj.Status != "" {
		orig.Status = prj.Status
	}
	if !prj.StartDate.IsZero() {
		orig.StartDate = prj.StartDate
	}
	if !prj.EndDate.IsZero() {
		orig.EndDate = prj.EndDate
	}
	if assigned != nil {
		orig.AssignedCompanyIDs = assigned
	}
	orig.UpdatedAt = prj.UpdatedAt

	repo.projects.table[prj.ID] = orig
	return *orig, nil
}

func (repo *projectRepository) CreateSubProject(ctx context.Context, sub project.SubProject) (project.SubProject, error) {
	repo.subProjects.Lock()
	defer repo.subProjects.Unlock()

	repo.subProjects.pkCount++
	sub.ID = repo.subProjects.pkCount
	repo.subProjects.table[sub.ID] = &sub
	return sub, nil
}

func (repo *projectRepository) GetSubProjectByID(ctx context.Context, id int) (project.SubProject, error) {
	repo.subProjects.RLock()
	defer repo.subProjects.RUnlock()

	if sub, ok := repo.subProjects.table[id]; ok {
		return *sub, nil
	}
	return project.SubProject{}, project.ErrNotFound
}

func (repo *projectRepository) QuerySubProjects(ctx context.Context, projectID int) ([]project.SubProject, error) {
	repo.subProjects.RLock()
	defer repo.subProjects.RUnlock()

	var subs []project.SubProject
	for _, sub := range repo.subProjects.table {
		if sub.ProjectID == projectID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (repo *projectRepository) UpdateSubProject(ctx context.Context, sub project.SubProject) (project.SubProject, error) {
	repo.subProjects.Lock()
	defer repo.subProjects.Unlock()

	orig, ok := repo.subProjects.table[sub.ID]
	if !ok {
		return project.SubProject{}, project.ErrNotFound
	}
	if sub.Name != "" {
		orig.Name = sub.Name
	}
	orig.Description = sub.Description
	if sub.Status != "" {
		orig.Status = sub.Status
	}
	if !sub.StartDate.IsZero() {
		orig.StartDate = sub.StartDate
	}
	if !sub.EndDate.IsZero() {
		orig.EndDate = sub.EndDate
	}
	orig.UpdatedAt = sub.UpdatedAt

	repo.subProjects.table[sub.ID] = orig
	return *orig, nil
}

func (repo *projectRepository) CreateTask(ctx context.Context, tsk project.Task) (project.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	repo.tasks.pkCount++
	tsk.ID = repo.tasks.pkCount
	repo.tasks.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *projectRepository) GetTaskByID(ctx context.Context, id int) (project.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	if tsk, ok := repo.tasks.table[id]; ok {
		return *tsk, nil
	}
	return project.Task{}, project.ErrNotFound
}

func (repo *projectRepository) QueryTasks(ctx context.Context, projectID int) ([]project.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	var tasks []project.Task
	for _, tsk := range repo.tasks.table {
		if tsk.ProjectID == projectID {
			tasks = append(tasks, *tsk)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (repo *projectRepository) UpdateTask(ctx context.Context, tsk project.Task, assigned []int) (project.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	orig, ok := repo.tasks.table[tsk.ID]
	if !ok {
		return project.Task{}, project.ErrNotFound
	}
	if tsk.Name != "" {
		orig.Name = tsk.Name
	}
	orig.Description = tsk.Description
	if tsk.Status != "" {
		orig.Status = tsk.Status
	}
	if tsk.Weight != 0 {
		orig.Weight = tsk.Weight
	}
	if assigned != nil {
		orig.AssignedCompanyIDs = assigned
	}
	orig.UpdatedAt = tsk.UpdatedAt

	repo.tasks.table[tsk.ID] = orig
	return *orig, nil
}
