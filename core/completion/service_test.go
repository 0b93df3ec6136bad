package completion_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/completion"
	"github.com/hudumahq/huduma/core/project"
	emailsvc "github.com/hudumahq/huduma/services/email"
	inmemdb "github.com/hudumahq/huduma/storage/database/inmem"
	testutil "github.com/hudumahq/huduma/tests"
)

type testDeps struct {
	svc     *completion.Service
	prjRepo project.Repository
	reqRepo completion.Repository
	mailSvc interface {
		SentMessages() []core.EmailMessage
		Clear()
	}
}

func setup(t *testing.T) testDeps {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	prjRepo := inmemdb.NewProjectRepository(db)
	reqRepo := inmemdb.NewCompletionRepository(db)
	cmpRepo := inmemdb.NewCompanyRepository(db)
	mailSvc := emailsvc.NewDummyService()

	conf := &core.Config{
		AppName:             "Huduma",
		StaffInboxEmail:     "delivery@localhost",
		JustificationMinLen: 30,
	}
	svc := completion.NewService(reqRepo, prjRepo, cmpRepo, access.NewChecker(), mailSvc, conf)
	return testDeps{svc: svc, prjRepo: prjRepo, reqRepo: reqRepo, mailSvc: mailSvc}
}

func validNewRequest(taskID int) completion.NewRequest {
	return completion.NewRequest{
		TaskID:        taskID,
		Justification: "All deliverables complete and verified on site.",
		EvidenceURL:   "https://evidence.test/report/1",
	}
}

func TestService_Submit(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, deps.prjRepo, "Rollout", nil)
	tsk := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "Survey", 100, nil)

	req, err := deps.svc.Submit(ctx, access.Company(3), validNewRequest(tsk.ID))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	assert.Equal(t, completion.StatusPending, req.Status)
	assert.Equal(t, tsk.ID, req.TaskID)
	assert.Equal(t, 3, req.CompanyID)
	assert.NotEmpty(t, req.Ref)
	assert.False(t, req.Decided())

	// staff got notified
	sent := deps.mailSvc.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "delivery@localhost", sent[0].To[0].Address)
		assert.Contains(t, sent[0].Subject, req.Ref)
	}
}

func TestService_Submit_accessControl(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, deps.prjRepo, "Restricted", []int{42})
	tsk := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "Hidden", 100, nil)
	openPrj := testutil.CreateProject(t, deps.prjRepo, "Open", nil)
	restrictedTask := testutil.CreateTask(t, deps.prjRepo, openPrj.ID, 0, "Private", 100, []int{42})

	// staff cannot submit
	if _, err := deps.svc.Submit(ctx, access.Staff(1), validNewRequest(tsk.ID)); err != completion.ErrNotAssigned {
		t.Errorf("Submit(staff) error = %v, want ErrNotAssigned", err)
	}
	// absent task reads as not found
	if _, err := deps.svc.Submit(ctx, access.Company(3), validNewRequest(999)); err != completion.ErrNotFound {
		t.Errorf("Submit(absent task) error = %v, want ErrNotFound", err)
	}
	// invisible project hides its task
	if _, err := deps.svc.Submit(ctx, access.Company(3), validNewRequest(tsk.ID)); err != completion.ErrNotFound {
		t.Errorf("Submit(invisible project) error = %v, want ErrNotFound", err)
	}
	// visible project, restricted leaf
	if _, err := deps.svc.Submit(ctx, access.Company(3), validNewRequest(restrictedTask.ID)); err != completion.ErrNotFound {
		t.Errorf("Submit(restricted task) error = %v, want ErrNotFound", err)
	}
	// the assigned company passes
	if _, err := deps.svc.Submit(ctx, access.Company(42), validNewRequest(tsk.ID)); err != nil {
		t.Errorf("Submit(assigned) failed: %v", err)
	}
}

func TestService_Submit_duplicateActive(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()
	cmp := access.Company(3)

	prj := testutil.CreateProject(t, deps.prjRepo, "Rollout", nil)
	tsk := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "Survey", 100, nil)

	first, err := deps.svc.Submit(ctx, cmp, validNewRequest(tsk.ID))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	// second submit while pending
	if _, err = deps.svc.Submit(ctx, cmp, validNewRequest(tsk.ID)); err != completion.ErrDuplicateRequest {
		t.Errorf("Submit(pending exists) error = %v, want ErrDuplicateRequest", err)
	}

	// still blocked after approval
	if _, err = deps.svc.Approve(ctx, access.Staff(1), first.ID, ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if _, err = deps.svc.Submit(ctx, cmp, validNewRequest(tsk.ID)); err != completion.ErrDuplicateRequest {
		t.Errorf("Submit(approved exists) error = %v, want ErrDuplicateRequest", err)
	}

	// another company is not blocked
	if _, err = deps.svc.Submit(ctx, access.Company(4), validNewRequest(tsk.ID)); err != nil {
		t.Errorf("Submit(other company) failed: %v", err)
	}
}

func TestService_Reject_allowsResubmission(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()
	cmp := access.Company(3)

	prj := testutil.CreateProject(t, deps.prjRepo, "Rollout", nil)
	tsk := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "Survey", 100, nil)

	first, err := deps.svc.Submit(ctx, cmp, validNewRequest(tsk.ID))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	rejected, err := deps.svc.Reject(ctx, access.Staff(1), first.ID, "insufficient evidence")
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	assert.Equal(t, completion.StatusRejected, rejected.Status)
	assert.Equal(t, "insufficient evidence", rejected.ReviewerNote)
	assert.True(t, rejected.Decided())

	// a fresh request re-enters the workflow; the rejected row stays as history
	second, err := deps.svc.Submit(ctx, cmp, validNewRequest(tsk.ID))
	if err != nil {
		t.Fatalf("Submit(after reject) failed: %v", err)
	}
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Ref, second.Ref)

	reqs, err := deps.svc.Filter(ctx, cmp, completion.QueryFilter{TaskID: tsk.ID})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	assert.Len(t, reqs, 2)
}

func TestService_decide_transitions(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()
	staff := access.Staff(1)

	prj := testutil.CreateProject(t, deps.prjRepo, "Rollout", nil)
	tsk := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "Survey", 100, nil)

	req, err := deps.svc.Submit(ctx, access.Company(3), validNewRequest(tsk.ID))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	// company cannot decide
	if _, err = deps.svc.Approve(ctx, access.Company(3), req.ID, ""); err != completion.ErrNotAssigned {
		t.Errorf("Approve(company) error = %v, want ErrNotAssigned", err)
	}
	// absent request
	if _, err = deps.svc.Approve(ctx, staff, 999, ""); err != completion.ErrNotFound {
		t.Errorf("Approve(absent) error = %v, want ErrNotFound", err)
	}

	approved, err := deps.svc.Approve(ctx, staff, req.ID, "looks good")
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	assert.Equal(t, completion.StatusApproved, approved.Status)
	assert.True(t, approved.Decided())

	// decided requests are terminal; the first decision's timestamp survives
	if _, err = deps.svc.Reject(ctx, staff, req.ID, "changed my mind"); err != completion.ErrInvalidState {
		t.Errorf("Reject(approved) error = %v, want ErrInvalidState", err)
	}
	refreshed, err := deps.svc.GetByID(ctx, staff, req.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	assert.Equal(t, completion.StatusApproved, refreshed.Status)
	assert.Equal(t, approved.DecidedAt, refreshed.DecidedAt)
	assert.Equal(t, "looks good", refreshed.ReviewerNote)
}

func TestService_queryScoping(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	prj := testutil.CreateProject(t, deps.prjRepo, "Rollout", nil)
	t1 := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "One", 50, nil)
	t2 := testutil.CreateTask(t, deps.prjRepo, prj.ID, 0, "Two", 50, nil)

	mine, err := deps.svc.Submit(ctx, access.Company(3), validNewRequest(t1.ID))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	theirs, err := deps.svc.Submit(ctx, access.Company(4), validNewRequest(t2.ID))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	// a company only sees its own requests
	if _, err = deps.svc.GetByID(ctx, access.Company(3), theirs.ID); err != completion.ErrNotFound {
		t.Errorf("GetByID(other company's) error = %v, want ErrNotFound", err)
	}
	reqs, err := deps.svc.Filter(ctx, access.Company(3), completion.QueryFilter{CompanyID: 4})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, mine.ID, reqs[0].ID) // foreign scope silently overridden
	}

	// staff with no filter at all sees every request
	all, err := deps.svc.Filter(ctx, access.Staff(1), completion.QueryFilter{})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	assert.Len(t, all, 2)

	// staff review queue spans companies
	pending, err := deps.svc.QueryPending(ctx, access.Staff(1))
	if err != nil {
		t.Fatalf("QueryPending() failed: %v", err)
	}
	assert.Len(t, pending, 2)

	if _, err = deps.svc.QueryPending(ctx, access.Company(3)); err != completion.ErrNotAssigned {
		t.Errorf("QueryPending(company) error = %v, want ErrNotAssigned", err)
	}
}

func TestNewRequest_Validate(t *testing.T) {
	minJst := strings.Repeat("x", completion.JustificationMinLen())

	tests := []struct {
		name     string
		request  completion.NewRequest
		wantErrs []string // offending fields
	}{
		{
			name:    "evidence url only",
			request: completion.NewRequest{TaskID: 1, Justification: minJst, EvidenceURL: "https://e.test/r"},
		},
		{
			name:    "evidence label only",
			request: completion.NewRequest{TaskID: 1, Justification: minJst, EvidenceLabel: "emailed report"},
		},
		{
			name:     "missing task",
			request:  completion.NewRequest{Justification: minJst, EvidenceLabel: "report"},
			wantErrs: []string{"task_id"},
		},
		{
			name:     "justification one short",
			request:  completion.NewRequest{TaskID: 1, Justification: minJst[1:], EvidenceLabel: "report"},
			wantErrs: []string{"justification"},
		},
		{
			name:     "no evidence at all",
			request:  completion.NewRequest{TaskID: 1, Justification: minJst},
			wantErrs: []string{"evidence_url", "evidence_label"},
		},
		{
			name:     "relative evidence url",
			request:  completion.NewRequest{TaskID: 1, Justification: minJst, EvidenceURL: "/reports/1"},
			wantErrs: []string{"evidence_url"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
			}
			fields := make([]string, 0, len(vErr.Fields))
			for _, fErr := range vErr.Fields {
				fields = append(fields, fErr.Field)
			}
			assert.ElementsMatch(t, tt.wantErrs, fields)
		})
	}
}
