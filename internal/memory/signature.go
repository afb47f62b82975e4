// Package memory implements the memory query cache: a filterable,
// signature-keyed view over a Muse's remote memory corpus, with derived
// aggregates computed locally over the loaded result set.
package memory

import (
	"sort"
	"strconv"
	"strings"

	"github.com/metamuse/musecore/internal/muse"
)

// signature derives the cache key for a filter. The serialization is
// canonical: tags are sorted and unset fields are omitted, so two filters
// with the same normalized fields always collide to the same key.
func signature(subjectID string, f muse.MemoryFilter) string {
	var b strings.Builder
	b.WriteString("subject=")
	b.WriteString(subjectID)

	if f.Category != "" {
		b.WriteString("|category=")
		b.WriteString(string(f.Category))
	}
	if len(f.Tags) > 0 {
		tags := append([]string(nil), f.Tags...)
		sort.Strings(tags)
		b.WriteString("|tags=")
		b.WriteString(strings.Join(tags, ","))
	}
	if f.MinImportance > 0 {
		b.WriteString("|min=")
		b.WriteString(strconv.FormatFloat(f.MinImportance, 'f', -1, 64))
	}
	if f.Search != "" {
		b.WriteString("|search=")
		b.WriteString(f.Search)
		b.WriteString("|mode=")
		b.WriteString(string(f.SearchType))
	}

	return b.String()
}
