package crawler

import (
	"context"
	"time"

	"catalogcrawl/catalog"
	"catalogcrawl/oops"
	"catalogcrawl/rundb"

	"github.com/google/uuid"
)

type RunRecorder interface {
	RecordRun(ctx context.Context, run rundb.Run) error
}

type SyncResult struct {
	RunId      string
	StartedAt  time.Time
	FinishedAt time.Time
	Walk       *WalkResult
	Merge      *catalog.MergeResult
}

func (r *SyncResult) Truncated() bool {
	return r.Walk != nil && r.Walk.Truncated()
}

// Syncer runs one crawl end to end. It doesn't own the renderer behind the walker.
type Syncer struct {
	Engine        *catalog.MergeEngine
	Walker        *Walker
	StoreLocation string
	MaybeRecorder RunRecorder
	Logger        Logger
	Now           func() time.Time
}

func NewSyncer(
	engine *catalog.MergeEngine, walker *Walker, storeLocation string, maybeRecorder RunRecorder,
	logger Logger,
) *Syncer {
	return &Syncer{
		Engine:        engine,
		Walker:        walker,
		StoreLocation: storeLocation,
		MaybeRecorder: maybeRecorder,
		Logger:        logger,
		Now:           time.Now,
	}
}

func (s *Syncer) Run(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{
		RunId:      uuid.NewString(),
		StartedAt:  s.Now(),
		FinishedAt: time.Time{},
		Walk:       nil,
		Merge:      nil,
	}
	s.Logger.Info("Run %s started", result.RunId)

	knownIds, err := s.Engine.KnownIds(ctx)
	if err != nil {
		return nil, oops.Wrapf(err, "load prior catalog")
	}
	s.Logger.Info("%d known ids", len(knownIds))

	walkResult, err := s.Walker.Walk(ctx, knownIds)
	if err != nil {
		return nil, err
	}
	result.Walk = walkResult
	s.Logger.Info(
		"Walk stopped (%s) after %d pages with %d records",
		walkResult.StopReason, walkResult.PagesVisited, len(walkResult.Records),
	)

	mergeResult, err := s.Engine.MergeAndPersist(ctx, walkResult.Records)
	if err != nil {
		return nil, oops.Wrapf(err, "merge and persist")
	}
	result.Merge = mergeResult
	result.FinishedAt = s.Now()

	if s.MaybeRecorder != nil {
		err := s.MaybeRecorder.RecordRun(ctx, rundb.Run{
			Id:             result.RunId,
			StartedAt:      result.StartedAt,
			FinishedAt:     result.FinishedAt,
			PagesVisited:   walkResult.PagesVisited,
			RecordsScraped: len(walkResult.Records),
			RecordsNew:     mergeResult.NewCount,
			StopReason:     string(walkResult.StopReason),
			Written:        mergeResult.Written,
			StoreLocation:  s.StoreLocation,
		})
		if err != nil {
			s.Logger.Warn("Couldn't record run %s: %v", result.RunId, err)
		}
	}

	if walkResult.Truncated() {
		s.Logger.Warn("Run %s is truncated at page %d", result.RunId, walkResult.PagesVisited)
	}
	s.Logger.Info(
		"Run %s finished: %d new, %d total, written=%t",
		result.RunId, mergeResult.NewCount, mergeResult.MaybeTable.Len(), mergeResult.Written,
	)
	return result, nil
}
