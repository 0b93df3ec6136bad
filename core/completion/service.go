package completion

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/core/project"
)

var (
	// errors
	ErrNotFound         = errors.New("completion request not found")
	ErrNotAssigned      = errors.New("not enough rights")
	ErrDuplicateRequest = errors.New("an active completion request already exists for this task")
	ErrInvalidState     = errors.New("completion request no longer permits this transition")
)

type (
	Repository interface {
		// CreateRequest persists a new request. It must fail with
		// ErrDuplicateRequest if an active (pending or approved) row already
		// exists for the same (task, company) pair; the store-level unique
		// constraint is the mechanism that settles the submit race.
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequestByID(ctx context.Context, id int) (Request, error)
		// FilterRequests applies AND operation on available QueryFilter fields,
		// most recent submissions first.
		FilterRequests(ctx context.Context, filter QueryFilter) ([]Request, error)
		HasActiveRequest(ctx context.Context, taskID, companyID int) (bool, error)
		// DecideRequest conditionally moves a pending request to the given
		// status. It must fail with ErrInvalidState when the row is no longer
		// pending (zero rows affected); that settles the decide race.
		DecideRequest(ctx context.Context, id int, status string, decidedAt time.Time, note string) (Request, error)
		// ApprovedTaskIDs reports, per task, whether the most recent request
		// for the given company is approved. companyID 0 matches any company.
		ApprovedTaskIDs(ctx context.Context, taskIDs []int, companyID int) (map[int]bool, error)
	}

	// TaskSource resolves the submission target; satisfied by project.Repository.
	TaskSource interface {
		GetTaskByID(ctx context.Context, id int) (project.Task, error)
		GetProjectByID(ctx context.Context, id int) (project.Project, error)
	}

	// CompanyDirectory resolves the submitting company for decision
	// notifications; satisfied by company.Repository.
	CompanyDirectory interface {
		GetCompanyByID(ctx context.Context, id int) (company.Company, error)
	}

	Service struct {
		repo       Repository
		tasks      TaskSource
		companies  CompanyDirectory
		checker    access.Checker
		mailSvc    core.EmailService
		staffInbox mail.Address
	}
)

func NewService(
	repo Repository,
	tasks TaskSource,
	companies CompanyDirectory,
	checker access.Checker,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	SetJustificationMinLen(conf.JustificationMinLen)
	return &Service{
		repo:       repo,
		tasks:      tasks,
		companies:  companies,
		checker:    checker,
		mailSvc:    mailSvc,
		staffInbox: mail.Address{Name: conf.AppName, Address: conf.StaffInboxEmail},
	}
}

// Submit validates and persists a company's claim that a task is done,
// entering the pending state. The task (and its project) must be visible to
// the submitting company; invisible targets are reported as not found, the
// same as absent ones.
func (svc *Service) Submit(ctx context.Context, actor access.Actor, nr NewRequest) (Request, error) {
	if err := nr.Validate(); err != nil {
		return Request{}, err
	}
	if !actor.IsCompany() {
		return Request{}, ErrNotAssigned
	}

	tsk, err := svc.tasks.GetTaskByID(ctx, nr.TaskID)
	if err != nil {
		if err == project.ErrNotFound {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	prj, err := svc.tasks.GetProjectByID(ctx, tsk.ProjectID)
	if err != nil {
		if err == project.ErrNotFound {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	if !access.Visible(actor, prj.AssignedCompanyIDs) || !access.Visible(actor, tsk.AssignedCompanyIDs) {
		return Request{}, ErrNotFound
	}

	active, err := svc.repo.HasActiveRequest(ctx, tsk.ID, actor.ID)
	if err != nil {
		return Request{}, err
	}
	if active {
		return Request{}, ErrDuplicateRequest
	}

	req := Request{
		Ref:           uuid.New().String(),
		TaskID:        tsk.ID,
		CompanyID:     actor.ID,
		Justification: nr.Justification,
		EvidenceURL:   nr.EvidenceURL,
		EvidenceLabel: nr.EvidenceLabel,
		Status:        StatusPending,
		SubmittedAt:   time.Now().UTC(),
	}
	req, err = svc.repo.CreateRequest(ctx, req)
	if err != nil {
		return Request{}, err
	}

	svc.notifySubmitted(req, tsk)
	return req, nil
}

// Approve moves a pending request to approved. Staff only.
func (svc *Service) Approve(ctx context.Context, actor access.Actor, id int, note string) (Request, error) {
	return svc.decide(ctx, actor, id, StatusApproved, note)
}

// Reject moves a pending request to rejected. Staff only. The company may
// submit a fresh request afterwards; the rejected row stays as history.
func (svc *Service) Reject(ctx context.Context, actor access.Actor, id int, note string) (Request, error) {
	return svc.decide(ctx, actor, id, StatusRejected, note)
}

func (svc *Service) decide(ctx context.Context, actor access.Actor, id int, status, note string) (Request, error) {
	if !svc.checker.IsStaff(actor) {
		return Request{}, ErrNotAssigned
	}
	if _, err := svc.repo.GetRequestByID(ctx, id); err != nil {
		return Request{}, err
	}
	req, err := svc.repo.DecideRequest(ctx, id, status, time.Now().UTC(), core.CleanString(note))
	if err != nil {
		return Request{}, err
	}

	svc.notifyDecided(ctx, req)
	return req, nil
}

// GetByID returns a single request. A company actor only sees its own.
func (svc *Service) GetByID(ctx context.Context, actor access.Actor, id int) (Request, error) {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if actor.IsCompany() && req.CompanyID != actor.ID {
		return Request{}, ErrNotFound
	}
	return req, nil
}

// Filter lists requests. Company actors are forced onto their own scope;
// staff may filter freely.
func (svc *Service) Filter(ctx context.Context, actor access.Actor, filter QueryFilter) ([]Request, error) {
	filter.Clean()
	if actor.IsCompany() {
		filter.CompanyID = actor.ID
	}
	return svc.repo.FilterRequests(ctx, filter)
}

// QueryPending lists all pending requests for review. Staff only.
func (svc *Service) QueryPending(ctx context.Context, actor access.Actor) ([]Request, error) {
	if !svc.checker.IsStaff(actor) {
		return nil, ErrNotAssigned
	}
	return svc.repo.FilterRequests(ctx, QueryFilter{Status: StatusPending})
}

// ApprovedTaskIDs exposes the repository's approval lookup so the progress
// aggregator can consume this service as its approval source.
func (svc *Service) ApprovedTaskIDs(ctx context.Context, taskIDs []int, companyID int) (map[int]bool, error) {
	return svc.repo.ApprovedTaskIDs(ctx, taskIDs, companyID)
}

func (svc *Service) notifySubmitted(req Request, tsk project.Task) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.staffInbox},
		Subject: fmt.Sprintf("New completion request %s", req.Ref),
		Body: fmt.Sprintf(
			"Company %d claims task %q (#%d) is done.\n\nJustification:\n%s\n\nEvidence: %s %s\n",
			req.CompanyID, tsk.Name, tsk.ID, req.Justification, req.EvidenceURL, req.EvidenceLabel,
		),
	})
}

func (svc *Service) notifyDecided(ctx context.Context, req Request) {
	if svc.mailSvc == nil {
		return
	}
	cmp, err := svc.companies.GetCompanyByID(ctx, req.CompanyID)
	if err != nil || cmp.ContactEmail == "" {
		return
	}
	body := fmt.Sprintf("Your completion request %s has been %s.", req.Ref, req.Status)
	if req.ReviewerNote != "" {
		body += fmt.Sprintf("\n\nReviewer note:\n%s", req.ReviewerNote)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: cmp.Name, Address: cmp.ContactEmail}},
		Subject: fmt.Sprintf("Completion request %s %s", req.Ref, req.Status),
		Body:    body,
	})
}
