// Package services implements the archive engine: the lifecycle operations
// (archive, restore, list, detail, permanent delete) over the record-kind
// registry, the live-table adapters and the archive store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/logging"
	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/repositories/archive"
	"github.com/orgvault/orgvault/internal/repositories/repomanager"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// Warning reports a soft reference inside a restored record that no longer
// resolves. Warnings are informational; the restore itself succeeded and
// the reference was preserved verbatim.
type Warning struct {
	ReferenceID string
	Message     string
}

// RestoreResult is returned by a successful restore.
type RestoreResult struct {
	Kind       snapshot.Kind
	OriginalID string
	Warnings   []Warning
}

// ListedEntry is one row of a listing: identity plus the cheap one-line
// summary, never the full payload.
type ListedEntry struct {
	ID         string
	Kind       snapshot.Kind
	Summary    string
	ArchivedAt time.Time
}

// Listing is one page of archived entries plus the total match count.
type Listing struct {
	Entries    []*ListedEntry
	TotalCount int
}

// Detail is the fully deserialized view of one archive entry.
type Detail struct {
	ID         string
	Kind       snapshot.Kind
	OriginalID string
	Record     any
	ArchivedAt time.Time
}

// unreadableSummary stands in for rows whose payload cannot be summarized.
// A corrupt entry must not take the whole listing down with it.
const unreadableSummary = "(unreadable entry)"

// ArchiveService orchestrates the archive lifecycle. Every record it
// touches goes through the registry: the engine never reaches into a
// native table except through the kind's adapter.
type ArchiveService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	registry *snapshot.Registry
	clock    func() time.Time
	logger   logging.Logger
}

// NewArchiveService constructs the engine. A nil clock defaults to
// time.Now; tests inject a fixed clock for deterministic timestamps.
func NewArchiveService(db *sql.DB, repos repomanager.RepositoryManager, registry *snapshot.Registry,
	clock func() time.Time, logger logging.Logger) *ArchiveService {
	if clock == nil {
		clock = time.Now
	}
	return &ArchiveService{
		db:       db,
		repos:    repos,
		registry: registry,
		clock:    clock,
		logger:   logger,
	}
}

// adapterErr passes the typed sentinels through untouched and wraps
// everything else as an opaque adapter failure.
func adapterErr(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) ||
		errors.Is(err, common.ErrorConflict) ||
		errors.Is(err, common.ErrorMalformedPayload) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorAdapterFailure, op, err)
}

func (s *ArchiveService) resolve(kind snapshot.Kind) (snapshot.Registration, error) {
	reg, ok := s.registry.Resolve(kind)
	if !ok {
		return snapshot.Registration{}, fmt.Errorf("%w: %q", common.ErrorUnknownKind, kind)
	}
	return reg, nil
}

// Archive moves a live record into the archive store. Steps: load the live
// record via the kind's adapter, serialize it, insert the archive entry and
// remove the live row, all inside one transaction. Archiving an already
// archived record reports common.ErrorConflict; a missing or foreign-owned
// record reports common.ErrorNotFound.
func (s *ArchiveService) Archive(ctx context.Context, ownerID string, kind snapshot.Kind, originalID string) (string, error) {
	reg, err := s.resolve(kind)
	if err != nil {
		return "", err
	}

	var entryID string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := reg.Adapter(tx).LoadLive(ctx, ownerID, originalID)
		if errors.Is(err, common.ErrorNotFound) {
			// The live row may be gone because the record is already
			// archived; a repeated archive call is a conflict, not a miss.
			archived, exErr := s.repos.Archive(tx).ExistsForRecord(ctx, ownerID, kind.String(), originalID)
			if exErr != nil {
				return adapterErr("check archive entry", exErr)
			}
			if archived {
				return fmt.Errorf("%w: record already archived", common.ErrorConflict)
			}
			return err
		}
		if err != nil {
			return adapterErr("load live", err)
		}

		payload, err := reg.Codec.Encode(record)
		if err != nil {
			return err
		}
		summary, err := reg.Describe(payload)
		if err != nil {
			return err
		}

		entry := &models.ArchiveEntry{
			ID:         uuid.NewString(),
			UserID:     ownerID,
			Kind:       kind.String(),
			OriginalID: originalID,
			Payload:    payload,
			Summary:    summary,
			ArchivedAt: s.clock(),
		}
		if err := s.repos.Archive(tx).Insert(ctx, entry); err != nil {
			return adapterErr("insert archive entry", err)
		}

		if err := reg.Adapter(tx).RemoveLive(ctx, ownerID, originalID); err != nil {
			return adapterErr("remove live", err)
		}

		entryID = entry.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "archived record", "kind", kind.String(), "original_id", originalID, "entry_id", entryID)
	return entryID, nil
}

// Restore moves an archived record back into its live table under its
// original identifier and deletes the archive entry, inside one
// transaction. Soft references that no longer resolve are preserved as-is
// and reported as warnings; refusing to restore over a missing category
// would strand the user's data.
func (s *ArchiveService) Restore(ctx context.Context, ownerID, entryID string) (*RestoreResult, error) {
	var result *RestoreResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entry, err := s.repos.Archive(tx).Get(ctx, ownerID, entryID)
		if err != nil {
			return adapterErr("get archive entry", err)
		}

		kind, err := snapshot.ParseKind(entry.Kind)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorMalformedPayload, err)
		}
		reg, err := s.resolve(kind)
		if err != nil {
			return err
		}

		record, err := reg.Codec.Decode(entry.Payload)
		if err != nil {
			return err
		}

		var warnings []Warning
		for _, refID := range reg.References(record) {
			exists, err := s.repos.Categories(tx).Exists(ctx, ownerID, refID)
			if err != nil {
				return adapterErr("resolve reference", err)
			}
			if !exists {
				warnings = append(warnings, Warning{
					ReferenceID: refID,
					Message:     fmt.Sprintf("category %s no longer exists", refID),
				})
			}
		}

		if err := reg.Adapter(tx).ReinsertLive(ctx, record); err != nil {
			return adapterErr("reinsert live", err)
		}

		if err := s.repos.Archive(tx).Delete(ctx, ownerID, entryID); err != nil {
			return adapterErr("delete archive entry", err)
		}

		result = &RestoreResult{Kind: kind, OriginalID: entry.OriginalID, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "restored record", "kind", result.Kind.String(), "original_id", result.OriginalID,
		"dangling_refs", len(result.Warnings))
	return result, nil
}

// PermanentDelete destroys the archive entry with no further side effects.
// Irreversible: this is the only way a record's data leaves the system.
func (s *ArchiveService) PermanentDelete(ctx context.Context, ownerID, entryID string) error {
	if err := s.repos.Archive(s.db).Delete(ctx, ownerID, entryID); err != nil {
		return adapterErr("delete archive entry", err)
	}
	s.logger.Info(ctx, "permanently deleted archive entry", "entry_id", entryID)
	return nil
}

// GetDetail returns the fully deserialized payload of one entry. Read-only.
func (s *ArchiveService) GetDetail(ctx context.Context, ownerID, entryID string) (*Detail, error) {
	entry, err := s.repos.Archive(s.db).Get(ctx, ownerID, entryID)
	if err != nil {
		return nil, adapterErr("get archive entry", err)
	}

	kind, err := snapshot.ParseKind(entry.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedPayload, err)
	}
	reg, err := s.resolve(kind)
	if err != nil {
		return nil, err
	}

	record, err := reg.Codec.Decode(entry.Payload)
	if err != nil {
		return nil, err
	}

	return &Detail{
		ID:         entry.ID,
		Kind:       kind,
		OriginalID: entry.OriginalID,
		Record:     record,
		ArchivedAt: entry.ArchivedAt,
	}, nil
}

// ListArchived returns one page of archived entries enriched with per-kind
// summaries. Summaries come from partial payload decodes, so a listing page
// never pays for full deserialization; a row whose payload cannot be
// summarized is reported with a placeholder instead of failing the page.
func (s *ArchiveService) ListArchived(ctx context.Context, ownerID string, f archive.ListFilter, p archive.Page) (*Listing, error) {
	entries, total, err := s.repos.Archive(s.db).List(ctx, ownerID, f, p)
	if err != nil {
		return nil, adapterErr("list archive entries", err)
	}

	listing := &Listing{TotalCount: total, Entries: make([]*ListedEntry, 0, len(entries))}
	for _, e := range entries {
		row := &ListedEntry{ID: e.ID, Kind: snapshot.Kind(e.Kind), ArchivedAt: e.ArchivedAt}

		kind, err := snapshot.ParseKind(e.Kind)
		if err != nil {
			row.Summary = unreadableSummary
			s.logger.Warn(ctx, "archive entry has unknown kind", "entry_id", e.ID, "kind", e.Kind)
			listing.Entries = append(listing.Entries, row)
			continue
		}
		reg, err := s.resolve(kind)
		if err != nil {
			row.Summary = unreadableSummary
			listing.Entries = append(listing.Entries, row)
			continue
		}

		summary, err := reg.Describe(e.Payload)
		if err != nil {
			row.Summary = unreadableSummary
			s.logger.Warn(ctx, "archive entry payload is unreadable", "entry_id", e.ID, "err", err.Error())
		} else {
			row.Summary = summary
		}
		listing.Entries = append(listing.Entries, row)
	}
	return listing, nil
}
