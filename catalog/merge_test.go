package catalog

import (
	"context"
	"errors"
	"io"
	"testing"

	"catalogcrawl/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, name string) Record {
	var maybeId *string
	if id != "" {
		maybeId = Id(id)
	}
	return Record{
		MaybeId:            maybeId,
		Page:               1,
		AssessmentName:     name,
		Url:                "https://www.shl.com/products/" + name,
		RemoteTesting:      true,
		AdaptiveIrtSupport: false,
		TestType:           "K",
	}
}

func names(table *Table) []string {
	var result []string
	for _, record := range table.Records {
		result = append(result, record.AssessmentName)
	}
	return result
}

func discardLogger() log.Logger {
	return log.NewWriter(io.Discard)
}

func TestMerge(t *testing.T) {
	type test struct {
		description      string
		prior            *Table
		batch            []Record
		expectedNames    []string
		expectedNewCount int
		expectedSkipped  int
	}

	tests := []test{
		{
			description:      "fresh table is sorted by name",
			prior:            nil,
			batch:            []Record{rec("3", "Verify"), rec("1", "Agile"), rec("2", "Java")},
			expectedNames:    []string{"Agile", "Java", "Verify"},
			expectedNewCount: 3,
			expectedSkipped:  0,
		},
		{
			description:      "known identifiers are filtered",
			prior:            &Table{Records: []Record{rec("1", "Agile")}},
			batch:            []Record{rec("1", "Agile v2"), rec("2", "Java")},
			expectedNames:    []string{"Agile", "Java"},
			expectedNewCount: 1,
			expectedSkipped:  1,
		},
		{
			description:      "first occurrence within the batch wins",
			prior:            nil,
			batch:            []Record{rec("7", "Excel"), rec("7", "Excel (duplicate)")},
			expectedNames:    []string{"Excel"},
			expectedNewCount: 1,
			expectedSkipped:  1,
		},
		{
			description:      "nil identifiers are never deduplicated",
			prior:            &Table{Records: []Record{rec("", "Orphan")}},
			batch:            []Record{rec("", "Orphan")},
			expectedNames:    []string{"Orphan", "Orphan"},
			expectedNewCount: 1,
			expectedSkipped:  0,
		},
		{
			description:      "sort is case-sensitive and stable",
			prior:            &Table{Records: []Record{rec("1", "b"), rec("2", "Same")}},
			batch:            []Record{rec("3", "Same"), rec("4", "B")},
			expectedNames:    []string{"B", "Same", "Same", "b"},
			expectedNewCount: 2,
			expectedSkipped:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			outcome := Merge(tc.prior, tc.batch)
			assert.Equal(t, tc.expectedNames, names(outcome.Table))
			assert.Len(t, outcome.NewRecords, tc.expectedNewCount)
			assert.Equal(t, tc.expectedSkipped, outcome.SkippedKnown)
			assert.True(t, outcome.Table.IsSortedByName())
			for _, record := range outcome.Table.Records {
				assert.Zero(t, record.Page)
			}
		})
	}
}

func TestMergeStableTieKeepsPriorFirst(t *testing.T) {
	prior := &Table{Records: []Record{rec("2", "Same")}}
	outcome := Merge(prior, []Record{rec("3", "Same")})
	require.Len(t, outcome.Table.Records, 2)
	assert.Equal(t, "2", outcome.Table.Records[0].IdString())
	assert.Equal(t, "3", outcome.Table.Records[1].IdString())
}

func TestMergeExistingWins(t *testing.T) {
	prior := &Table{Records: []Record{rec("X", "Original")}}
	changed := rec("X", "Original")
	changed.Url = "https://elsewhere"
	changed.TestType = "A, B"

	outcome := Merge(prior, []Record{changed})
	require.Len(t, outcome.Table.Records, 1)
	assert.Equal(t, "https://www.shl.com/products/Original", outcome.Table.Records[0].Url)
	assert.Equal(t, "K", outcome.Table.Records[0].TestType)
}

func TestMergeIdentityUniqueness(t *testing.T) {
	prior := &Table{Records: []Record{rec("1", "a"), rec("2", "b"), rec("", "c")}}
	batch := []Record{rec("2", "z"), rec("3", "y"), rec("3", "x"), rec("", "c"), rec("1", "w")}
	outcome := Merge(prior, batch)

	seen := map[string]bool{}
	for _, record := range outcome.Table.Records {
		if id, ok := record.Id(); ok {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
	assert.Len(t, outcome.Table.Records, 5)
}

func TestMergeAndPersistIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(&Table{Records: []Record{rec("1", "Agile")}})
	batch := []Record{rec("2", "Java"), rec("1", "Agile")}

	first, err := NewMergeEngine(store, discardLogger()).MergeAndPersist(ctx, batch)
	require.NoError(t, err)
	assert.True(t, first.Written)
	assert.Equal(t, 1, first.NewCount)
	afterFirst := store.MaybeTable

	second, err := NewMergeEngine(store, discardLogger()).MergeAndPersist(ctx, batch)
	require.NoError(t, err)
	assert.False(t, second.Written)
	assert.Zero(t, second.NewCount)
	assert.Equal(t, afterFirst, store.MaybeTable)
	assert.Equal(t, afterFirst.Records, second.MaybeTable.Records)
	assert.Equal(t, 1, store.SaveCount)
}

func TestMergeAndPersistWithoutNewRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("no prior table", func(t *testing.T) {
		store := NewMemoryStore(nil)
		result, err := NewMergeEngine(store, discardLogger()).MergeAndPersist(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, result.MaybeTable)
		assert.False(t, result.Written)
		assert.Zero(t, store.SaveCount)
	})

	t.Run("everything known", func(t *testing.T) {
		prior := &Table{Records: []Record{rec("A", "a"), rec("B", "b"), rec("C", "c")}}
		store := NewMemoryStore(prior)
		result, err := NewMergeEngine(store, discardLogger()).MergeAndPersist(
			ctx, []Record{rec("A", "a"), rec("B", "b"), rec("C", "c")},
		)
		require.NoError(t, err)
		assert.False(t, result.Written)
		assert.Equal(t, 3, result.SkippedKnown)
		assert.Equal(t, prior.Records, result.MaybeTable.Records)
		assert.Zero(t, store.SaveCount)
	})
}

func TestMergeEngineLoadsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(&Table{Records: []Record{rec("1", "a")}})
	engine := NewMergeEngine(store, discardLogger())

	ids, err := engine.KnownIds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)

	_, err = engine.MergeAndPersist(ctx, []Record{rec("2", "b")})
	require.NoError(t, err)
	assert.Equal(t, 1, store.LoadCount)
	assert.Equal(t, 1, store.SaveCount)
}

func TestMergeEnginePropagatesStoreFaults(t *testing.T) {
	ctx := context.Background()
	loadFault := errors.New("disk on fire")

	store := NewMemoryStore(nil)
	store.LoadErr = loadFault
	_, err := NewMergeEngine(store, discardLogger()).MergeAndPersist(ctx, []Record{rec("1", "a")})
	assert.ErrorIs(t, err, loadFault)

	saveFault := errors.New("read-only")
	store = NewMemoryStore(nil)
	store.SaveErr = saveFault
	_, err = NewMergeEngine(store, discardLogger()).MergeAndPersist(ctx, []Record{rec("1", "a")})
	assert.ErrorIs(t, err, saveFault)
}
