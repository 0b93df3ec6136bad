// Package inmemdb provides in-memory repository implementations with the
// same conditional-write semantics as the SQL store. Used by tests and
// local dry runs.
package inmemdb

import (
	"sync"

	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/core/completion"
	"github.com/hudumahq/huduma/core/project"
)

type (
	DB struct {
		company    *companyTable
		project    *projectTable
		subProject *subProjectTable
		task       *taskTable
		request    *requestTable
	}

	companyTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*company.Company
	}

	projectTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*project.Project
	}

	subProjectTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*project.SubProject
	}

	taskTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*project.Task
	}

	requestTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*completion.Request
	}
)

func Open() (*DB, error) {
	db := &DB{
		company:    &companyTable{table: make(map[int]*company.Company)},
		project:    &projectTable{table: make(map[int]*project.Project)},
		subProject: &subProjectTable{table: make(map[int]*project.SubProject)},
		task:       &taskTable{table: make(map[int]*project.Task)},
		request:    &requestTable{table: make(map[int]*completion.Request)},
	}
	return db, nil
}
