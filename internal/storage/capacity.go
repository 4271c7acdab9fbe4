package storage

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CapacityLevel is the 4-level usage taxonomy.
type CapacityLevel string

const (
	LevelSafe     CapacityLevel = "safe"     // < 60%
	LevelWarning  CapacityLevel = "warning"  // 60-79%
	LevelCritical CapacityLevel = "critical" // 80-94%
	LevelFull     CapacityLevel = "full"     // >= 95%
)

// DetailedStorageInfo is the per-item capacity breakdown.
type DetailedStorageInfo struct {
	TotalSize   int64      `json:"totalSize"`
	Quota       int64      `json:"quota"`
	PercentUsed float64    `json:"percentUsed"`
	ItemCount   int        `json:"itemCount"`
	Items       []ItemStat `json:"items"`
}

// CapacityWarning describes the current usage level with guidance.
type CapacityWarning struct {
	Level           CapacityLevel `json:"level"`
	PercentUsed     float64       `json:"percentUsed"`
	Message         string        `json:"message"`
	Recommendations []string      `json:"recommendations"`
}

// CleanupReport summarizes an automatic cleanup run.
type CleanupReport struct {
	BytesFreed   int64 `json:"bytesFreed"`
	ItemsRemoved int   `json:"itemsRemoved"`
}

// cleanupEligible lists the logical prefixes automatic cleanup may delete.
// Projects, metadata and backups are never touched automatically.
var cleanupEligible = []string{PrefixAutosave, PrefixTemp, PrefixCache}

// GetDetailedStorageInfo returns per-item sizes and timestamps plus overall
// usage percentage. Items are sorted largest first.
func (m *Manager) GetDetailedStorageInfo() DetailedStorageInfo {
	items, err := m.namespacedItems()
	if err != nil {
		m.logger.Warn("storage list failed", "error", err)
		return DetailedStorageInfo{Quota: m.quota}
	}

	var total int64
	for _, item := range items {
		total += int64(len(item.Key)) + int64(len(m.prefix)) + item.Size
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Size > items[j].Size })

	return DetailedStorageInfo{
		TotalSize:   total,
		Quota:       m.quota,
		PercentUsed: percent(total, m.quota),
		ItemCount:   len(items),
		Items:       items,
	}
}

// CheckCapacityWarnings maps current usage onto the 4-level taxonomy.
func (m *Manager) CheckCapacityWarnings() CapacityWarning {
	info := m.GetDetailedStorageInfo()
	p := info.PercentUsed

	switch {
	case p >= 95:
		return CapacityWarning{
			Level:       LevelFull,
			PercentUsed: p,
			Message:     "Storage is full. Saving will fail until space is freed.",
			Recommendations: []string{
				"Run automatic cleanup to remove autosave and cache data",
				"Delete unused projects",
				"Export large projects and remove them from storage",
			},
		}
	case p >= 80:
		return CapacityWarning{
			Level:       LevelCritical,
			PercentUsed: p,
			Message:     "Storage is critically low. Cleanup is strongly recommended.",
			Recommendations: []string{
				"Run automatic cleanup",
				"Delete old project backups",
			},
		}
	case p >= 60:
		return CapacityWarning{
			Level:       LevelWarning,
			PercentUsed: p,
			Message:     "Storage usage is elevated.",
			Recommendations: []string{
				"Consider removing old autosave files",
			},
		}
	default:
		return CapacityWarning{
			Level:           LevelSafe,
			PercentUsed:     p,
			Message:         "Storage usage is healthy.",
			Recommendations: []string{},
		}
	}
}

// PerformAutomaticCleanup deletes cleanup-eligible items (autosave, temp,
// cache prefixes) oldest first, largest first within the same age, stopping
// once usage drops to targetPercent or below.
func (m *Manager) PerformAutomaticCleanup(targetPercent float64) CleanupReport {
	info := m.GetDetailedStorageInfo()
	report := CleanupReport{}
	if info.PercentUsed <= targetPercent {
		return report
	}

	var eligible []ItemStat
	for _, item := range info.Items {
		for _, prefix := range cleanupEligible {
			if strings.HasPrefix(item.Key, prefix) {
				eligible = append(eligible, item)
				break
			}
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Modified != eligible[j].Modified {
			return eligible[i].Modified < eligible[j].Modified
		}
		return eligible[i].Size > eligible[j].Size
	})

	remaining := info.TotalSize
	for _, item := range eligible {
		if percent(remaining, m.quota) <= targetPercent {
			break
		}
		if !m.RemoveItem(item.Key) {
			continue
		}
		freed := int64(len(m.prefix)+len(item.Key)) + item.Size
		remaining -= freed
		report.BytesFreed += freed
		report.ItemsRemoved++
	}

	m.logger.Info("automatic cleanup finished",
		"bytesFreed", report.BytesFreed, "itemsRemoved", report.ItemsRemoved)
	return report
}

// projectIDTimestampRe extracts the leading epoch-ms timestamp embedded in
// generated project ids.
var projectIDTimestampRe = regexp.MustCompile(`(\d{10,})`)

// GetOldestProjects returns up to n project keys ranked by extracted
// timestamp ascending. Ids without an embedded timestamp fall back to the
// item's modification time.
func (m *Manager) GetOldestProjects(n int) []ItemStat {
	items, err := m.namespacedItems()
	if err != nil {
		m.logger.Warn("storage list failed", "error", err)
		return nil
	}

	type ranked struct {
		item ItemStat
		ts   int64
	}
	var projects []ranked
	for _, item := range items {
		if !strings.HasPrefix(item.Key, PrefixProjects) {
			continue
		}
		ts := item.Modified
		if match := projectIDTimestampRe.FindString(strings.TrimPrefix(item.Key, PrefixProjects)); match != "" {
			if v, err := strconv.ParseInt(match, 10, 64); err == nil {
				ts = v
			}
		}
		projects = append(projects, ranked{item: item, ts: ts})
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ts < projects[j].ts })

	if n > len(projects) {
		n = len(projects)
	}
	out := make([]ItemStat, 0, n)
	for _, r := range projects[:n] {
		out = append(out, r.item)
	}
	return out
}

// SuggestOptimizations returns human-readable heuristics about what is
// eating storage.
func (m *Manager) SuggestOptimizations() []string {
	info := m.GetDetailedStorageInfo()
	var suggestions []string

	autosaves := 0
	var autosaveBytes int64
	projectSizes := make([]int64, 0)
	for _, item := range info.Items {
		switch {
		case strings.HasPrefix(item.Key, PrefixAutosave):
			autosaves++
			autosaveBytes += item.Size
		case strings.HasPrefix(item.Key, PrefixProjects):
			projectSizes = append(projectSizes, item.Size)
		}
	}

	if autosaves > 5 {
		suggestions = append(suggestions, fmt.Sprintf(
			"%d autosave files are using %d bytes; old autosaves can be cleaned up automatically", autosaves, autosaveBytes))
	}
	if len(projectSizes) >= 3 {
		var total int64
		for _, s := range projectSizes {
			total += s
		}
		avg := total / int64(len(projectSizes))
		similar := 0
		for _, s := range projectSizes {
			if avg > 0 && s > avg*8/10 && s < avg*12/10 {
				similar++
			}
		}
		if similar >= 3 {
			suggestions = append(suggestions, fmt.Sprintf(
				"%d projects have similar large sizes; they may be near-duplicates worth consolidating", similar))
		}
	}
	if info.PercentUsed >= 80 {
		suggestions = append(suggestions, "storage is above 80% capacity; run cleanup or delete unused projects")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "storage looks healthy; no action needed")
	}
	return suggestions
}

func percent(used, quota int64) float64 {
	if quota <= 0 {
		return 0
	}
	return float64(used) / float64(quota) * 100
}
