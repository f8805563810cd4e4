package services

import (
	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/repositories/repomanager"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// DefaultRegistry wires the closed set of record kinds to their codecs,
// describe functions, soft-reference extractors and live-table adapters.
// Supporting a new kind means adding one registration here.
func DefaultRegistry(repos repomanager.RepositoryManager) *snapshot.Registry {
	r := snapshot.NewRegistry()

	r.Register(snapshot.KindNote, snapshot.Registration{
		Codec:      snapshot.NoteCodec(),
		Describe:   snapshot.NoteDescribe,
		References: snapshot.NoteReferences,
		Adapter:    func(db dbx.DBTX) snapshot.LiveAdapter { return repos.Notes(db) },
	})

	r.Register(snapshot.KindTask, snapshot.Registration{
		Codec:      snapshot.TaskCodec(),
		Describe:   snapshot.TaskDescribe,
		References: snapshot.TaskReferences,
		Adapter:    func(db dbx.DBTX) snapshot.LiveAdapter { return repos.Tasks(db) },
	})

	r.Register(snapshot.KindTransaction, snapshot.Registration{
		Codec:      snapshot.TransactionCodec(),
		Describe:   snapshot.TransactionDescribe,
		References: snapshot.TransactionReferences,
		Adapter:    func(db dbx.DBTX) snapshot.LiveAdapter { return repos.Transactions(db) },
	})

	r.Register(snapshot.KindBudget, snapshot.Registration{
		Codec:      snapshot.BudgetCodec(),
		Describe:   snapshot.BudgetDescribe,
		References: snapshot.BudgetReferences,
		Adapter:    func(db dbx.DBTX) snapshot.LiveAdapter { return repos.Budgets(db) },
	})

	r.Register(snapshot.KindGoal, snapshot.Registration{
		Codec:      snapshot.GoalCodec(),
		Describe:   snapshot.GoalDescribe,
		References: snapshot.GoalReferences,
		Adapter:    func(db dbx.DBTX) snapshot.LiveAdapter { return repos.Goals(db) },
	})

	return r
}
