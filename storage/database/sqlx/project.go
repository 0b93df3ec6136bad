package sqlxrepos

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/project"
)

type projectRow struct {
	ID                int           `db:"id"`
	Name              string        `db:"projectname"`
	Description       string        `db:"projectdesc"`
	StartDate         null.Time     `db:"startdate"`
	EndDate           null.Time     `db:"enddate"`
	Status            string        `db:"status"`
	AssignedCompanies pq.Int64Array `db:"assignedcompanies"`
	CreatedAt         null.Time     `db:"created_at"`
	UpdatedAt         null.Time     `db:"updated_at"`
}

func (r projectRow) toProject() project.Project {
	return project.Project{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		StartDate:          r.StartDate.Time,
		EndDate:            r.EndDate.Time,
		Status:             r.Status,
		AssignedCompanyIDs: arrayToInts(r.AssignedCompanies),
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

type subProjectRow struct {
	ID          int       `db:"id"`
	ProjectID   int       `db:"project_id"`
	Name        string    `db:"subprojectname"`
	Description string    `db:"sub_desc"`
	Status      string    `db:"status"`
	StartDate   null.Time `db:"start_date"`
	EndDate     null.Time `db:"end_date"`
	CreatedAt   null.Time `db:"created_at"`
	UpdatedAt   null.Time `db:"updated_at"`
}

func (r subProjectRow) toSubProject() project.SubProject {
	return project.SubProject{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartDate:   r.StartDate.Time,
		EndDate:     r.EndDate.Time,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type projectRepository struct {
	db core.DBExecutor
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db core.DBExecutor) *projectRepository {
	return &projectRepository{db: db}
}

func (repo projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	query := `
		INSERT INTO project (projectname, projectdesc, startdate, enddate, status, assignedcompanies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		prj.Name, prj.Description,
		null.NewTime(prj.StartDate.UTC(), !prj.StartDate.IsZero()),
		null.NewTime(prj.EndDate.UTC(), !prj.EndDate.IsZero()),
		prj.Status, intsToArray(prj.AssignedCompanyIDs),
		prj.CreatedAt.UTC(), prj.UpdatedAt.UTC(),
	).Scan(&prj.ID)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return prj, nil
}

func (repo projectRepository) GetProjectByID(ctx context.Context, id int) (project.Project, error) {
	var row projectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM project WHERE id = $1`, id); err != nil {
		return project.Project{}, trapNoRowsErr(err, project.ErrNotFound, "finding project by ID")
	}
	return row.toProject(), nil
}

func (repo projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM project ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.toProject())
	}
	return projects, nil
}

func (repo projectRepository) UpdateProject(ctx context.Context, prj project.Project, assigned []int) (project.Project, error) {
	// a nil assignment list leaves the stored list unchanged; clearing is
	// done with an explicit empty list (same "public" meaning as NULL)
	query := `
		UPDATE project
		SET projectname       = $1,
		    projectdesc       = $2,
		    startdate         = COALESCE($3, startdate),
		    enddate           = COALESCE($4, enddate),
		    status            = $5,
		    assignedcompanies = COALESCE($6, assignedcompanies),
		    updated_at        = $7
		WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, query,
		prj.Name, prj.Description,
		null.NewTime(prj.StartDate.UTC(), !prj.StartDate.IsZero()),
		null.NewTime(prj.EndDate.UTC(), !prj.EndDate.IsZero()),
		prj.Status, intsToArray(assigned), prj.UpdatedAt.UTC(), prj.ID,
	)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return project.Project{}, project.ErrNotFound
	}
	return repo.GetProjectByID(ctx, prj.ID)
}

func (repo projectRepository) CreateSubProject(ctx context.Context, sub project.SubProject) (project.SubProject, error) {
	query := `
		INSERT INTO sub_project (project_id, subprojectname, sub_desc, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		sub.ProjectID, sub.Name, sub.Description, sub.Status,
		null.NewTime(sub.StartDate.UTC(), !sub.StartDate.IsZero()),
		null.NewTime(sub.EndDate.UTC(), !sub.EndDate.IsZero()),
		sub.CreatedAt.UTC(), sub.UpdatedAt.UTC(),
	).Scan(&sub.ID)
	if err != nil {
		return project.SubProject{}, errors.Wrap(err, "inserting sub-project")
	}
	return sub, nil
}

func (repo projectRepository) GetSubProjectByID(ctx context.Context, id int) (project.SubProject, error) {
	var row subProjectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM sub_project WHERE id = $1`, id); err != nil {
		return project.SubProject{}, trapNoRowsErr(err, project.ErrNotFound, "finding sub-project by ID")
	}
	return row.toSubProject(), nil
}

func (repo projectRepository) QuerySubProjects(ctx context.Context, projectID int) ([]project.SubProject, error) {
	var rows []subProjectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM sub_project WHERE project_id = $1 ORDER BY id`, projectID); err != nil {
		return nil, errors.Wrap(err, "querying sub-projects")
	}
	subs := make([]project.SubProject, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubProject())
	}
	return subs, nil
}

func (repo projectRepository) UpdateSubProject(ctx context.Context, sub project.SubProject) (project.SubProject, error) {
	query := `
		UPDATE sub_project
		SET subprojectname = $1,
		    sub_desc       = $2,
		    status         = $3,
		    start_date     = COALESCE($4, start_date),
		    end_date       = COALESCE($5, end_date),
		    updated_at     = $6
		WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, query,
		sub.Name, sub.Description, sub.Status,
		null.NewTime(sub.StartDate.UTC(), !sub.StartDate.IsZero()),
		null.NewTime(sub.EndDate.UTC(), !sub.EndDate.IsZero()),
		sub.UpdatedAt.UTC(), sub.ID,
	)
	if err != nil {
		return project.SubProject{}, errors.Wrap(err, "updating sub-project")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return project.SubProject{}, project.ErrNotFound
	}
	return repo.GetSubProjectByID(ctx, sub.ID)
}
