package project

import (
	"time"

	"github.com/hudumahq/huduma/core"
)

// Statuses
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusSuspended = "suspended"
)

var AllStatuses = []string{StatusActive, StatusCompleted, StatusSuspended}

// Project is the top-level deliverable container. A nil or empty
// AssignedCompanyIDs list makes it visible to all companies.
type Project struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Status             string    `json:"status"`
	AssignedCompanyIDs []int     `json:"assigned_company_ids,omitempty"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

// SubProject is the optional grouping layer between Project and Task.
// ProjectID is immutable after creation.
type SubProject struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Task is the weighted unit of work; the only entity contributing to
// progress math. SubProjectID is 0 when the task hangs directly off the
// project. Weights across a parent conventionally sum to 100 but the
// aggregator never assumes it.
type Task struct {
	ID                 int       `json:"id"`
	ProjectID          int       `json:"project_id"`
	SubProjectID       int       `json:"sub_project_id,omitempty"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Weight             float64   `json:"weight"`
	Status             string    `json:"status"`
	AssignedCompanyIDs []int     `json:"assigned_company_ids,omitempty"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name               string    `json:"name" validate:"required"`
	Description        string    `json:"description"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date" validate:"omitempty,gtefield=StartDate"`
	Status             string    `json:"status" validate:"omitempty,projectstatus"`
	AssignedCompanyIDs []int     `json:"assigned_company_ids" validate:"omitempty,dive,gt=0"`
}

func (np *NewProject) Validate() error {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	np.Status = core.CleanString(np.Status, true /* lower */)
	if np.Status == "" {
		np.Status = StatusActive
	}
	if err := core.Validate.Struct(np); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// UpdateProject defines what information may be provided to modify an existing Project.
type UpdateProject struct {
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Status             string    `json:"status" validate:"omitempty,projectstatus"`
	AssignedCompanyIDs []int     `json:"assigned_company_ids" validate:"omitempty,dive,gt=0"`
}

func (up *UpdateProject) Validate(orig Project) error {
	name := core.CleanString(up.Name)
	if name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	up.Description = core.CleanString(up.Description)
	up.Status = core.CleanString(up.Status, true /* lower */)
	if up.Status == "" {
		up.Status = orig.Status
	}
	if err := core.Validate.Struct(up); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// NewSubProject contains information needed to create a new SubProject.
type NewSubProject struct {
	ProjectID   int       `json:"project_id" validate:"required,gt=0"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"omitempty,projectstatus"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date" validate:"omitempty,gtefield=StartDate"`
}

func (ns *NewSubProject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	if ns.Status == "" {
		ns.Status = StatusActive
	}
	if err := core.Validate.Struct(ns); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// UpdateSubProject defines what information may be provided to modify an existing SubProject.
type UpdateSubProject struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"omitempty,projectstatus"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

func (us *UpdateSubProject) Validate(orig SubProject) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	us.Description = core.CleanString(us.Description)
	us.Status = core.CleanString(us.Status, true /* lower */)
	if us.Status == "" {
		us.Status = orig.Status
	}
	if err := core.Validate.Struct(us); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	ProjectID          int     `json:"project_id" validate:"required,gt=0"`
	SubProjectID       int     `json:"sub_project_id" validate:"omitempty,gt=0"`
	Name               string  `json:"name" validate:"required"`
	Description        string  `json:"description"`
	Weight             float64 `json:"weight" validate:"required,gt=0"`
	Status             string  `json:"status" validate:"omitempty,projectstatus"`
	AssignedCompanyIDs []int   `json:"assigned_company_ids" validate:"omitempty,dive,gt=0"`
}

func (nt *NewTask) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
	if nt.Status == "" {
		nt.Status = StatusActive
	}
	if err := core.Validate.Struct(nt); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// UpdateTask defines what information may be provided to modify an existing Task.
type UpdateTask struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Weight             float64 `json:"weight" validate:"omitempty,gt=0"`
	Status             string  `json:"status" validate:"omitempty,projectstatus"`
	AssignedCompanyIDs []int   `json:"assigned_company_ids" validate:"omitempty,dive,gt=0"`
}

func (ut *UpdateTask) Validate(orig Task) error {
	name := core.CleanString(ut.Name)
	if name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	ut.Description = core.CleanString(ut.Description)
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	if ut.Status == "" {
		ut.Status = orig.Status
	}
	if ut.Weight == 0 {
		ut.Weight = orig.Weight
	}
	if err := core.Validate.Struct(ut); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}
