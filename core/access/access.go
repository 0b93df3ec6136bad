// Package access defines the acting identity passed into every core call and
// the visibility policy applied to company-scoped records.
//
// An Actor is always an explicit parameter; core logic never reads identity
// from ambient state.
package access

import "fmt"

type Kind int

const (
	KindStaff Kind = iota + 1
	KindCompany
)

// Actor is an already-authenticated identity: either a staff member
// (unrestricted) or a company (scoped by assignment lists).
type Actor struct {
	Kind Kind
	ID   int
}

func Staff(id int) Actor   { return Actor{Kind: KindStaff, ID: id} }
func Company(id int) Actor { return Actor{Kind: KindCompany, ID: id} }

func (a Actor) IsStaff() bool   { return a.Kind == KindStaff }
func (a Actor) IsCompany() bool { return a.Kind == KindCompany }

func (a Actor) String() string {
	if a.IsStaff() {
		return fmt.Sprintf("staff:%d", a.ID)
	}
	return fmt.Sprintf("company:%d", a.ID)
}

// Checker is the capability-check collaborator. The default implementation
// trusts the Actor tag; deployments with a richer permission catalog plug
// their own in.
type Checker interface {
	IsStaff(actor Actor) bool
}

type kindChecker struct{}

func (kindChecker) IsStaff(actor Actor) bool { return actor.IsStaff() }

func NewChecker() Checker { return kindChecker{} }

// Visible reports whether an actor may see a record carrying the given
// company assignment list.
//
// Staff always see everything. For a company actor a nil or empty list means
// the record is public; a populated list restricts visibility to the listed
// companies. A populated list that does not contain the actor's company is
// NOT public - that distinction is the whole point of this predicate.
func Visible(actor Actor, assigned []int) bool {
	if actor.IsStaff() {
		return true
	}
	if len(assigned) == 0 {
		return true
	}
	for _, id := range assigned {
		if id == actor.ID {
			return true
		}
	}
	return false
}
