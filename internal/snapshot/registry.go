package snapshot

import (
	"fmt"

	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/models"
)

// Registration binds one record kind to everything the engine needs for it.
type Registration struct {
	// Codec serializes and deserializes the kind's records.
	Codec Codec

	// Describe summarizes a payload for listings without a full decode.
	Describe DescribeFunc

	// References extracts the soft foreign keys embedded in a record, as raw
	// identifiers. Used at restore time to report dangling references.
	References func(record any) []string

	// Adapter returns the kind's live-table adapter bound to the given
	// transaction handle.
	Adapter func(db dbx.DBTX) LiveAdapter
}

// Registry is the closed mapping from kind to registration. It is built once
// at startup and read-only afterwards.
type Registry struct {
	regs map[Kind]Registration
}

func NewRegistry() *Registry {
	return &Registry{regs: make(map[Kind]Registration)}
}

// Register adds a kind. Re-registering a kind panics: the set is static and
// a duplicate row is a programming error.
func (r *Registry) Register(kind Kind, reg Registration) {
	if _, dup := r.regs[kind]; dup {
		panic(fmt.Sprintf("snapshot: kind %q registered twice", kind))
	}
	r.regs[kind] = reg
}

// Resolve returns the registration for kind, or ok=false for a kind tag
// that was never registered.
func (r *Registry) Resolve(kind Kind) (Registration, bool) {
	reg, ok := r.regs[kind]
	return reg, ok
}

func categoryRef(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

// NoteDescribe and friends expose the per-kind describe functions for
// registry wiring.
var (
	NoteDescribe        DescribeFunc = describeNote
	TaskDescribe        DescribeFunc = describeTask
	TransactionDescribe DescribeFunc = describeTransaction
	BudgetDescribe      DescribeFunc = describeBudget
	GoalDescribe        DescribeFunc = describeGoal
)

// NoteReferences extracts soft references from a note. Notes carry none.
func NoteReferences(any) []string { return nil }

// TaskReferences extracts the category reference from a task.
func TaskReferences(record any) []string {
	if t, ok := record.(*models.Task); ok {
		return categoryRef(t.CategoryID)
	}
	return nil
}

// TransactionReferences extracts the category reference from a transaction.
func TransactionReferences(record any) []string {
	if t, ok := record.(*models.Transaction); ok {
		return categoryRef(t.CategoryID)
	}
	return nil
}

// BudgetReferences extracts the category reference from a budget.
func BudgetReferences(record any) []string {
	if b, ok := record.(*models.Budget); ok {
		return categoryRef(b.CategoryID)
	}
	return nil
}

// GoalReferences extracts soft references from a goal. Goals carry none.
func GoalReferences(any) []string { return nil }
