package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/completion"
)

type requestRow struct {
	ID            int       `db:"id"`
	Ref           string    `db:"ref"`
	TaskID        int       `db:"task_id"`
	CompanyID     int       `db:"company_id"`
	Justification string    `db:"justification"`
	EvidenceURL   string    `db:"evidence_url"`
	EvidenceLabel string    `db:"evidence_label"`
	Status        string    `db:"status"`
	SubmittedOn   time.Time `db:"submittedon"`
	DecidedOn     null.Time `db:"decidedon"`
	ReviewerNote  string    `db:"reviewer_note"`
}

func (r requestRow) toRequest() completion.Request {
	return completion.Request{
		ID:            r.ID,
		Ref:           r.Ref,
		TaskID:        r.TaskID,
		CompanyID:     r.CompanyID,
		Justification: r.Justification,
		EvidenceURL:   r.EvidenceURL,
		EvidenceLabel: r.EvidenceLabel,
		Status:        r.Status,
		SubmittedAt:   r.SubmittedOn,
		DecidedAt:     r.DecidedOn.Time,
		ReviewerNote:  r.ReviewerNote,
	}
}

type completionRepository struct {
	db core.DBExecutor
}

var _ completion.Repository = (*completionRepository)(nil) // interface compliance check

func NewCompletionRepository(db core.DBExecutor) *completionRepository {
	return &completionRepository{db: db}
}

func (repo completionRepository) CreateRequest(ctx context.Context, req completion.Request) (completion.Request, error) {
	query := `
		INSERT INTO completion_request (ref, task_id, company_id, justification, evidence_url, evidence_label, status, submittedon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		req.Ref, req.TaskID, req.CompanyID, req.Justification,
		req.EvidenceURL, req.EvidenceLabel, req.Status, req.SubmittedAt.UTC(),
	).Scan(&req.ID)
	if err != nil {
		// the partial unique index on active rows settles the submit race
		if isUniqueViolation(err, "uq_completion_request_active") {
			return completion.Request{}, completion.ErrDuplicateRequest
		}
		return completion.Request{}, errors.Wrap(err, "inserting completion request")
	}
	return req, nil
}

func (repo completionRepository) GetRequestByID(ctx context.Context, id int) (completion.Request, error) {
	var row requestRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM completion_request WHERE id = $1`, id); err != nil {
		return completion.Request{}, trapNoRowsErr(err, completion.ErrNotFound, "finding completion request by ID")
	}
	return row.toRequest(), nil
}

func (repo completionRepository) FilterRequests(ctx context.Context, filter completion.QueryFilter) ([]completion.Request, error) {
	query := `SELECT * FROM completion_request`
	var args []interface{}

	if !filter.IsEmpty() {
		var conds []string
		if filter.TaskID != 0 {
			conds = append(conds, "task_id = ?")
			args = append(args, filter.TaskID)
		}
		if filter.CompanyID != 0 {
			conds = append(conds, "company_id = ?")
			args = append(args, filter.CompanyID)
		}
		if filter.Status != "" {
			conds = append(conds, "status = ?")
			args = append(args, filter.Status)
		}
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += core.OrderBy(core.DBOrdering{Field: "submittedon"}, core.DBOrdering{Field: "id"})

	var rows []requestRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying completion requests")
	}
	reqs := make([]completion.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toRequest())
	}
	return reqs, nil
}

func (repo completionRepository) HasActiveRequest(ctx context.Context, taskID, companyID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM completion_request
			WHERE task_id = $1 AND company_id = $2 AND status IN ('pending', 'approved')
		)`
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, taskID, companyID); err != nil {
		return false, errors.Wrap(err, "checking active completion request")
	}
	return exists, nil
}

func (repo completionRepository) DecideRequest(ctx context.Context, id int, status string, decidedAt time.Time, note string) (completion.Request, error) {
	// conditional write: only rows still pending move; zero rows affected
	// means another reviewer got there first
	query := `
		UPDATE completion_request
		SET status = $1, decidedon = $2, reviewer_note = $3
		WHERE id = $4 AND status = 'pending'
		RETURNING id, ref, task_id, company_id, justification, evidence_url, evidence_label, status, submittedon, decidedon, reviewer_note`
	var row requestRow
	err := repo.db.QueryRowxContext(ctx, query, status, decidedAt.UTC(), note, id).StructScan(&row)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return completion.Request{}, completion.ErrInvalidState
		}
		return completion.Request{}, errors.Wrap(err, "deciding completion request")
	}
	return row.toRequest(), nil
}

func (repo completionRepository) ApprovedTaskIDs(ctx context.Context, taskIDs []int, companyID int) (map[int]bool, error) {
	if len(taskIDs) == 0 {
		return map[int]bool{}, nil
	}

	// latest request per (task, company); a task counts once any relevant
	// pair's latest request is approved
	query := `
		SELECT DISTINCT ON (task_id, company_id) task_id, status
		FROM completion_request
		WHERE task_id IN (?)`
	args := []interface{}{taskIDs}
	if companyID != 0 {
		query += " AND company_id = ?"
		args = append(args, companyID)
	}
	query += " ORDER BY task_id, company_id, submittedon DESC, id DESC"

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying approved tasks")
	}

	rows, err := repo.db.QueryContext(ctx, repo.db.Rebind(query), inArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "querying approved tasks")
	}
	defer func() { _ = rows.Close() }()

	approved := make(map[int]bool)
	for rows.Next() {
		var taskID int
		var status string
		if err = rows.Scan(&taskID, &status); err != nil {
			return nil, errors.Wrap(err, "querying approved tasks")
		}
		if status == completion.StatusApproved {
			approved[taskID] = true
		}
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying approved tasks")
	}
	return approved, nil
}
