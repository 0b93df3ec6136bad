package sqlxrepos

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hudumahq/huduma/core/project"
)

type taskRow struct {
	ID                int           `db:"id"`
	ProjectID         int           `db:"project_id"`
	SubProjectID      null.Int      `db:"subprojectid"`
	Name              string        `db:"taskname"`
	Description       string        `db:"taskdetails"`
	Weight            float64       `db:"taskpercentage"`
	Status            string        `db:"status"`
	AssignedCompanies pq.Int64Array `db:"assignedcompanies"`
	CreatedAt         null.Time     `db:"created_at"`
	UpdatedAt         null.Time     `db:"updated_at"`
}

func (r taskRow) toTask() project.Task {
	return project.Task{
		ID:                 r.ID,
		ProjectID:          r.ProjectID,
		SubProjectID:       r.SubProjectID.Int,
		Name:               r.Name,
		Description:        r.Description,
		Weight:             r.Weight,
		Status:             r.Status,
		AssignedCompanyIDs: arrayToInts(r.AssignedCompanies),
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

func (repo projectRepository) CreateTask(ctx context.Context, tsk project.Task) (project.Task, error) {
	query := `
		INSERT INTO task (project_id, subprojectid, taskname, taskdetails, taskpercentage, status, assignedcompanies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		tsk.ProjectID, null.NewInt(tsk.SubProjectID, tsk.SubProjectID != 0),
		tsk.Name, tsk.Description, tsk.Weight, tsk.Status,
		intsToArray(tsk.AssignedCompanyIDs),
		tsk.CreatedAt.UTC(), tsk.UpdatedAt.UTC(),
	).Scan(&tsk.ID)
	if err != nil {
		return project.Task{}, errors.Wrap(err, "inserting task")
	}
	return tsk, nil
}

func (repo projectRepository) GetTaskByID(ctx context.Context, id int) (project.Task, error) {
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM task WHERE id = $1`, id); err != nil {
		return project.Task{}, trapNoRowsErr(err, project.ErrNotFound, "finding task by ID")
	}
	return row.toTask(), nil
}

func (repo projectRepository) QueryTasks(ctx context.Context, projectID int) ([]project.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM task WHERE project_id = $1 ORDER BY id`, projectID); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]project.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (repo projectRepository) UpdateTask(ctx context.Context, tsk project.Task, assigned []int) (project.Task, error) {
	// nil assignment list leaves the stored list unchanged (see UpdateProject)
	query := `
		UPDATE task
		SET taskname          = $1,
		    taskdetails       = $2,
		    taskpercentage    = $3,
		    status            = $4,
		    assignedcompanies = COALESCE($5, assignedcompanies),
		    updated_at        = $6
		WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, query,
		tsk.Name, tsk.Description, tsk.Weight, tsk.Status,
		intsToArray(assigned), tsk.UpdatedAt.UTC(), tsk.ID,
	)
	if err != nil {
		return project.Task{}, errors.Wrap(err, "updating task")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return project.Task{}, project.ErrNotFound
	}
	return repo.GetTaskByID(ctx, tsk.ID)
}
