package memory

import (
	"sort"
	"time"

	"github.com/metamuse/musecore/internal/muse"
)

// DayGroup is one calendar day's worth of loaded entries.
type DayGroup struct {
	Day     time.Time
	Entries []muse.MemoryEntry
}

// GroupByDate buckets the loaded result set by calendar date, most recent
// day first. Entries within a bucket are ordered by recency. Pure read:
// no network.
func (c *QueryCache) GroupByDate() []DayGroup {
	entries := c.Results()

	// Keyed by formatted date rather than time.Time: equality on the
	// latter depends on location pointers and monotonic readings.
	buckets := make(map[string][]muse.MemoryEntry)
	days := make(map[string]time.Time)
	for _, entry := range entries {
		key := entry.Timestamp.Format(time.DateOnly)
		buckets[key] = append(buckets[key], entry)
		if _, ok := days[key]; !ok {
			days[key] = dayOf(entry.Timestamp)
		}
	}

	groups := make([]DayGroup, 0, len(buckets))
	for key, dayEntries := range buckets {
		sort.Slice(dayEntries, func(i, j int) bool {
			return dayEntries[i].Timestamp.After(dayEntries[j].Timestamp)
		})
		groups = append(groups, DayGroup{Day: days[key], Entries: dayEntries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})

	return groups
}

// CategoryCounts tallies the loaded result set by category.
func (c *QueryCache) CategoryCounts() map[muse.MemoryCategory]int {
	entries := c.Results()

	counts := make(map[muse.MemoryCategory]int, len(entries))
	for _, entry := range entries {
		counts[entry.Category]++
	}
	return counts
}

// AverageImportance computes the mean importance of the loaded result
// set. Returns 0 for an empty set.
func (c *QueryCache) AverageImportance() float64 {
	entries := c.Results()
	if len(entries) == 0 {
		return 0
	}

	var sum float64
	for _, entry := range entries {
		sum += entry.Importance
	}
	return sum / float64(len(entries))
}

// RelatedMemories returns loaded entries sharing at least one tag with
// the target, excluding the target itself, ordered by number of shared
// tags descending then by recency, capped at limit.
func (c *QueryCache) RelatedMemories(target muse.MemoryEntry, limit int) []muse.MemoryEntry {
	if limit <= 0 {
		return nil
	}

	targetTags := make(map[string]struct{}, len(target.Tags))
	for _, tag := range target.Tags {
		targetTags[tag] = struct{}{}
	}

	type scored struct {
		entry  muse.MemoryEntry
		shared int
	}

	var candidates []scored
	for _, entry := range c.Results() {
		if entry.ID == target.ID {
			continue
		}
		shared := 0
		for _, tag := range entry.Tags {
			if _, ok := targetTags[tag]; ok {
				shared++
			}
		}
		if shared > 0 {
			candidates = append(candidates, scored{entry: entry, shared: shared})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].entry.Timestamp.After(candidates[j].entry.Timestamp)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	related := make([]muse.MemoryEntry, len(candidates))
	for i, candidate := range candidates {
		related[i] = candidate.entry
	}
	return related
}

// dayOf truncates a timestamp to its calendar date, preserving location.
func dayOf(ts time.Time) time.Time {
	year, month, day := ts.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, ts.Location())
}
