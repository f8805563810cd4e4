// Package snapshot implements the polymorphic snapshotting layer of the
// archive engine: the closed set of record kinds, per-kind codecs that
// serialize a record into a self-describing payload, cheap one-line
// summaries for listings, and the registry binding a kind to its codec
// and live-table adapter.
package snapshot

import (
	"fmt"

	"github.com/orgvault/orgvault/internal/common"
)

// Kind tags one of the archivable record kinds. The set is closed;
// adding a kind means adding one registry row, never editing the engine.
type Kind string

const (
	KindNote        Kind = "note"
	KindTask        Kind = "task"
	KindTransaction Kind = "transaction"
	KindBudget      Kind = "budget"
	KindGoal        Kind = "goal"
)

// Kinds returns all supported kinds in stable order.
func Kinds() []Kind {
	return []Kind{KindNote, KindTask, KindTransaction, KindBudget, KindGoal}
}

// ParseKind validates a raw kind tag.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case KindNote, KindTask, KindTransaction, KindBudget, KindGoal:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrorUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}
