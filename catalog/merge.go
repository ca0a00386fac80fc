package catalog

import (
	"context"
	"slices"

	"catalogcrawl/log"
)

type MergeOutcome struct {
	Table      *Table
	NewRecords []Record
	// Records dropped because their identifier was in the prior table or earlier in the batch.
	SkippedKnown int
	NilIds       int
}

// Merge filters out records whose identifier is already known, appends the rest after the prior
// records, keeps the first record per identifier and stable-sorts by name. Records without an
// identifier are never considered known and never deduplicated.
func Merge(maybePrior *Table, newRecords []Record) MergeOutcome {
	known := make(map[string]bool)
	for _, id := range maybePrior.Ids() {
		known[id] = true
	}

	outcome := MergeOutcome{
		Table:        nil,
		NewRecords:   nil,
		SkippedKnown: 0,
		NilIds:       0,
	}
	for _, record := range newRecords {
		if id, ok := record.Id(); !ok {
			outcome.NilIds++
		} else if known[id] {
			outcome.SkippedKnown++
			continue
		} else {
			known[id] = true
		}
		outcome.NewRecords = append(outcome.NewRecords, record.Published())
	}

	var combined []Record
	if maybePrior != nil {
		combined = append(combined, maybePrior.Records...)
	}
	combined = append(combined, outcome.NewRecords...)

	seen := make(map[string]bool, len(combined))
	merged := make([]Record, 0, len(combined))
	for _, record := range combined {
		if id, ok := record.Id(); ok {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		merged = append(merged, record.Published())
	}
	slices.SortStableFunc(merged, compareByName)

	outcome.Table = &Table{Records: merged}
	return outcome
}

type MergeResult struct {
	// Nil when nothing was ever persisted and nothing new was found.
	MaybeTable   *Table
	NewCount     int
	SkippedKnown int
	NilIds       int
	Written      bool
}

// MergeEngine reads the store at most once and writes it at most once per run.
type MergeEngine struct {
	store      Store
	logger     log.Logger
	prior      *Table
	loadedOnce bool
}

func NewMergeEngine(store Store, logger log.Logger) *MergeEngine {
	return &MergeEngine{
		store:      store,
		logger:     logger,
		prior:      nil,
		loadedOnce: false,
	}
}

func (e *MergeEngine) LoadPrior(ctx context.Context) (*Table, error) {
	if e.loadedOnce {
		return e.prior, nil
	}

	prior, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	e.prior = prior
	e.loadedOnce = true
	if prior == nil {
		e.logger.Info().Str("store", e.store.Location()).Msg("No prior catalog")
	} else {
		e.logger.Info().Str("store", e.store.Location()).Int("records", prior.Len()).Msg("Loaded prior catalog")
	}
	return prior, nil
}

func (e *MergeEngine) KnownIds(ctx context.Context) ([]string, error) {
	prior, err := e.LoadPrior(ctx)
	if err != nil {
		return nil, err
	}
	return prior.Ids(), nil
}

func (e *MergeEngine) MergeAndPersist(ctx context.Context, newRecords []Record) (*MergeResult, error) {
	prior, err := e.LoadPrior(ctx)
	if err != nil {
		return nil, err
	}

	outcome := Merge(prior, newRecords)
	result := &MergeResult{
		MaybeTable:   prior,
		NewCount:     len(outcome.NewRecords),
		SkippedKnown: outcome.SkippedKnown,
		NilIds:       outcome.NilIds,
		Written:      false,
	}
	if outcome.NilIds > 0 {
		e.logger.Warn().Int("count", outcome.NilIds).Msg("Records without an identifier can't be deduplicated")
	}
	if len(outcome.NewRecords) == 0 {
		e.logger.Info().Int("scraped", len(newRecords)).Msg("No new records, leaving the catalog untouched")
		return result, nil
	}

	if err := e.store.Save(ctx, outcome.Table); err != nil {
		return nil, err
	}
	e.prior = outcome.Table
	result.MaybeTable = outcome.Table
	result.Written = true
	e.logger.Info().
		Str("store", e.store.Location()).
		Int("new", result.NewCount).
		Int("total", outcome.Table.Len()).
		Msg("Catalog saved")
	return result, nil
}
