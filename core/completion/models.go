package completion

import (
	"time"

	"github.com/hudumahq/huduma/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a company's claim that one task is done, subject to staff
// approval. Requests are never deleted; rejected requests stay behind as
// history and a fresh row re-enters the pending state.
type Request struct {
	ID            int       `json:"id"`
	Ref           string    `json:"ref"` // public reference code (audit trail, notifications)
	TaskID        int       `json:"task_id"`
	CompanyID     int       `json:"company_id"`
	Justification string    `json:"justification"`
	EvidenceURL   string    `json:"evidence_url,omitempty"`
	EvidenceLabel string    `json:"evidence_label,omitempty"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"` // UTC
	DecidedAt     time.Time `json:"decided_at"`   // UTC; zero until decided
	ReviewerNote  string    `json:"reviewer_note,omitempty"`
}

func (r Request) Decided() bool { return !r.DecidedAt.IsZero() }

func (r Request) Active() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// NewRequest contains information needed to submit a completion request.
// At least one of EvidenceURL or EvidenceLabel must be provided; a URL must
// parse as an absolute URL. The justification minimum length is enforced by
// a struct level validation (see validators.go).
type NewRequest struct {
	TaskID        int    `json:"task_id" validate:"required,gt=0"`
	Justification string `json:"justification" validate:"required"`
	EvidenceURL   string `json:"evidence_url"`
	EvidenceLabel string `json:"evidence_label"`
}

func (nr *NewRequest) Validate() error {
	nr.Justification = core.CleanString(nr.Justification)
	nr.EvidenceURL = core.CleanString(nr.EvidenceURL)
	nr.EvidenceLabel = core.CleanString(nr.EvidenceLabel)
	if err := core.Validate.Struct(nr); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

type QueryFilter struct {
	TaskID    int    `query:"task_id"`
	CompanyID int    `query:"company_id"`
	Status    string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.TaskID == 0 && qf.CompanyID == 0 && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
