package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/hudumahq/huduma/core/completion"
)

type completionRepository struct {
	db *requestTable
}

var _ completion.Repository = (*completionRepository)(nil) // interface compliance check

func NewCompletionRepository(db *DB) *completionRepository {
	return &completionRepository{db: db.request}
}

// query returns all requests, most recent submissions first.
func (repo *completionRepository) query() []completion.Request {
	reqs := make([]completion.Request, 0, len(repo.db.table))
	for _, req := range repo.db.table {
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].SubmittedAt.After(reqs[j].SubmittedAt)
		}
		return reqs[i].ID > reqs[j].ID
	})
	return reqs
}

func (repo *completionRepository) hasActive(taskID, companyID int) bool {
	for _, req := range repo.db.table {
		if req.TaskID == taskID && req.CompanyID == companyID && req.Active() {
			return true
		}
	}
	return false
}

func (repo *completionRepository) CreateRequest(ctx context.Context, req completion.Request) (completion.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// same guarantee as the store's partial unique index
	if req.Active() && repo.hasActive(req.TaskID, req.CompanyID) {
		return completion.Request{}, completion.ErrDuplicateRequest
	}

	repo.db.pkCount++
	req.ID = repo.db.pkCount
	repo.db.table[req.ID] = &req
	return req, nil
}

func (repo *completionRepository) GetRequestByID(ctx context.Context, id int) (completion.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.table[id]; ok {
		return *req, nil
	}
	return completion.Request{}, completion.ErrNotFound
}

func (repo *completionRepository) FilterRequests(ctx context.Context, filter completion.QueryFilter) ([]completion.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.IsEmpty() {
		return repo.query(), nil
	}

	var reqs []completion.Request
	for _, req := range repo.query() {
		if filter.TaskID != 0 && req.TaskID != filter.TaskID {
			continue
		}
		if filter.CompanyID != 0 && req.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (repo *completionRepository) HasActiveRequest(ctx context.Context, taskID, companyID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.hasActive(taskID, companyID), nil
}

func (repo *completionRepository) DecideRequest(ctx context.Context, id int, status string, decidedAt time.Time, note string) (completion.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req, ok := repo.db.table[id]
	if !ok {
		return completion.Request{}, completion.ErrNotFound
	}
	// conditional write: only pending rows move
	if req.Status != completion.StatusPending {
		return completion.Request{}, completion.ErrInvalidState
	}
	req.Status = status
	req.DecidedAt = decidedAt
	req.ReviewerNote = note

	repo.db.table[id] = req
	return *req, nil
}

func (repo *completionRepository) ApprovedTaskIDs(ctx context.Context, taskIDs []int, companyID int) (map[int]bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	inScope := make(map[int]bool, len(taskIDs))
	for _, id := range taskIDs {
		inScope[id] = true
	}

	// latest request per (task, company) pair; repo.query() is already
	// ordered most recent first
	type pair struct{ task, cmp int }
	seen := make(map[pair]bool)
	approved := make(map[int]bool)
	for _, req := range repo.query() {
		if !inScope[req.TaskID] {
			continue
		}
		if companyID != 0 && req.CompanyID != companyID {
			continue
		}
		p := pair{req.TaskID, req.CompanyID}
		if seen[p] {
			continue
		}
		seen[p] = true
		if req.Status == completion.StatusApproved {
			approved[req.TaskID] = true
		}
	}
	return approved, nil
}
