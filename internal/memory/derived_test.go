package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metamuse/musecore/internal/mocks"
	"github.com/metamuse/musecore/internal/muse"
)

// loadEntries installs a fixed result set into a fresh cache.
func loadEntries(t *testing.T, entries []muse.MemoryEntry) *QueryCache {
	t.Helper()

	api := mocks.NewMockRemoteAPI()
	api.QueryMemoriesFunc = func(context.Context, string, muse.MemoryFilter) ([]muse.MemoryEntry, error) {
		return entries, nil
	}
	c := newTestCache(t, api)
	require.NoError(t, c.Query(context.Background(), muse.MemoryFilter{}))
	return c
}

func TestGroupByDate_ThreeDays(t *testing.T) {
	day := func(offset int, hour int) time.Time {
		return time.Date(2026, time.August, 20+offset, hour, 0, 0, 0, time.UTC)
	}
	entries := []muse.MemoryEntry{
		mocks.NewMemoryEntryBuilder().WithID("old").WithTimestamp(day(0, 9)).Build(),
		mocks.NewMemoryEntryBuilder().WithID("mid-early").WithTimestamp(day(1, 8)).Build(),
		mocks.NewMemoryEntryBuilder().WithID("mid-late").WithTimestamp(day(1, 20)).Build(),
		mocks.NewMemoryEntryBuilder().WithID("new").WithTimestamp(day(2, 12)).Build(),
	}
	c := loadEntries(t, entries)

	groups := c.GroupByDate()

	require.Len(t, groups, 3)
	// Most recent day first.
	assert.Equal(t, day(2, 0), groups[0].Day)
	assert.Equal(t, day(1, 0), groups[1].Day)
	assert.Equal(t, day(0, 0), groups[2].Day)

	require.Len(t, groups[1].Entries, 2)
	// Within a day, most recent entry first.
	assert.Equal(t, "mid-late", groups[1].Entries[0].ID)
	assert.Equal(t, "mid-early", groups[1].Entries[1].ID)

	for _, group := range groups {
		for _, entry := range group.Entries {
			y1, m1, d1 := group.Day.Date()
			y2, m2, d2 := entry.Timestamp.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				t.Errorf("entry %s in wrong bucket %v", entry.ID, group.Day)
			}
		}
	}
}

func TestGroupByDate_EmptySet(t *testing.T) {
	c := loadEntries(t, nil)
	assert.Empty(t, c.GroupByDate())
}

func TestCategoryCounts(t *testing.T) {
	entries := []muse.MemoryEntry{
		mocks.NewMemoryEntryBuilder().WithCategory(muse.CategoryLearning).Build(),
		mocks.NewMemoryEntryBuilder().WithCategory(muse.CategoryLearning).Build(),
		mocks.NewMemoryEntryBuilder().WithCategory(muse.CategoryCreative).Build(),
	}
	c := loadEntries(t, entries)

	counts := c.CategoryCounts()
	assert.Equal(t, 2, counts[muse.CategoryLearning])
	assert.Equal(t, 1, counts[muse.CategoryCreative])
	assert.Equal(t, 0, counts[muse.CategoryEmotional])
}

func TestAverageImportance(t *testing.T) {
	entries := []muse.MemoryEntry{
		mocks.NewMemoryEntryBuilder().WithImportance(0.2).Build(),
		mocks.NewMemoryEntryBuilder().WithImportance(0.8).Build(),
	}
	c := loadEntries(t, entries)

	assert.InDelta(t, 0.5, c.AverageImportance(), 1e-9)
}

func TestAverageImportance_EmptySet(t *testing.T) {
	c := loadEntries(t, nil)
	assert.Zero(t, c.AverageImportance())
}

func TestRelatedMemories_SharedTagsOnly(t *testing.T) {
	x := mocks.NewMemoryEntryBuilder().WithID("x").WithTags("a", "b").Build()
	y := mocks.NewMemoryEntryBuilder().WithID("y").WithTags("a", "c").Build()
	z := mocks.NewMemoryEntryBuilder().WithID("z").WithTags("d").Build()
	c := loadEntries(t, []muse.MemoryEntry{x, y, z})

	related := c.RelatedMemories(x, 5)

	require.Len(t, related, 1)
	assert.Equal(t, "y", related[0].ID)
}

func TestRelatedMemories_OrderedBySharedCountThenRecency(t *testing.T) {
	now := time.Now()
	target := mocks.NewMemoryEntryBuilder().WithID("target").WithTags("a", "b", "c").Build()
	oneShared := mocks.NewMemoryEntryBuilder().WithID("one").WithTags("a").
		WithTimestamp(now).Build()
	twoSharedOld := mocks.NewMemoryEntryBuilder().WithID("two-old").WithTags("a", "b").
		WithTimestamp(now.Add(-time.Hour)).Build()
	twoSharedNew := mocks.NewMemoryEntryBuilder().WithID("two-new").WithTags("b", "c").
		WithTimestamp(now).Build()
	c := loadEntries(t, []muse.MemoryEntry{target, oneShared, twoSharedOld, twoSharedNew})

	related := c.RelatedMemories(target, 5)

	require.Len(t, related, 3)
	assert.Equal(t, "two-new", related[0].ID)
	assert.Equal(t, "two-old", related[1].ID)
	assert.Equal(t, "one", related[2].ID)
}

func TestRelatedMemories_LimitAndSelfExclusion(t *testing.T) {
	target := mocks.NewMemoryEntryBuilder().WithID("target").WithTags("a").Build()
	var entries []muse.MemoryEntry
	entries = append(entries, target)
	for _, id := range []string{"r1", "r2", "r3"} {
		entries = append(entries, mocks.NewMemoryEntryBuilder().WithID(id).WithTags("a").Build())
	}
	c := loadEntries(t, entries)

	related := c.RelatedMemories(target, 2)
	require.Len(t, related, 2)
	for _, entry := range related {
		assert.NotEqual(t, "target", entry.ID)
	}

	assert.Empty(t, c.RelatedMemories(target, 0))
}
