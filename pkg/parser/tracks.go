package parser

import "strings"

// Pass identifies which scan produced the tracks of a result.
type Pass string

const (
	PassNone       Pass = "none"
	PassStructured Pass = "structured"
	PassRelaxed    Pass = "relaxed"
)

// ScanResult is the outcome of scanning a dump for active tracks.
type ScanResult struct {
	// Tracks are the deduplicated records in discovery order.
	Tracks []TrackRecord

	// Pass is the scan that produced Tracks.
	Pass Pass

	// Threads is the number of output thread subsections seen.
	Threads int

	// StandbyThreads is the number of subsections skipped as standby.
	StandbyThreads int

	// ActiveTables counts non-standby subsections with an active tracks
	// header.
	ActiveTables int

	// RowsSkipped counts table rows that did not match the row grammar.
	RowsSkipped int

	// Rejected holds the trimmed rows counted in RowsSkipped.
	Rejected []string
}

// ScanActiveTracks scans raw with the default grammar.
func ScanActiveTracks(raw string, registry *ClientRegistry) []TrackRecord {
	return DefaultGrammar().ScanActiveTracks(raw, registry)
}

// ScanActiveTracks returns the deduplicated active tracks of raw.
func (g *Grammar) ScanActiveTracks(raw string, registry *ClientRegistry) []TrackRecord {
	return g.Scan(raw, registry).Tracks
}

// Scan runs the structured pass over each output thread subsection and
// falls back to a relaxed whole-text scan when it finds nothing.
func (g *Grammar) Scan(raw string, registry *ClientRegistry) *ScanResult {
	g = g.orDefault()
	result := &ScanResult{Pass: PassNone}
	acc := newTrackSet(registry)

	sections := strings.Split(raw, g.Markers.ThreadDelimiter)
	for _, section := range sections[1:] {
		result.Threads++
		if strings.Contains(section, g.Markers.Standby) {
			result.StandbyThreads++
			continue
		}
		g.scanThread(section, acc, result)
	}

	if len(acc.tracks) > 0 {
		result.Pass = PassStructured
	} else {
		for _, row := range g.RelaxedTrackRow.FindAll(raw) {
			acc.add(row)
		}
		if len(acc.tracks) > 0 {
			result.Pass = PassRelaxed
		}
	}

	result.Tracks = acc.tracks
	return result
}

// scanThread reads the active tracks table of one subsection.
func (g *Grammar) scanThread(section string, acc *trackSet, result *ScanResult) {
	lines := splitLines(section)

	header := -1
	for i, line := range lines {
		if strings.Contains(line, g.Markers.TracksHeader) && strings.Contains(line, g.Markers.TracksActive) {
			header = i
			break
		}
	}
	if header < 0 {
		return
	}
	result.ActiveTables++
	if header+1 >= len(lines) {
		return
	}

	i := header + 1
	if g.isColumnTitles(lines[i]) {
		i++
	}

	for ; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) || startsIndented(line) || strings.Contains(line, g.Markers.EffectChains) {
			break
		}
		trimmed := strings.TrimSpace(line)
		row, ok := g.ActiveTrackRow.Match(trimmed)
		if !ok {
			result.RowsSkipped++
			result.Rejected = append(result.Rejected, trimmed)
			continue
		}
		acc.add(row)
	}
}

func (g *Grammar) isColumnTitles(line string) bool {
	for _, title := range g.Markers.ColumnTitles {
		if strings.Contains(line, title) {
			return true
		}
	}
	return false
}

func startsIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// trackSet accumulates records, dropping duplicate (track, pid) pairs.
type trackSet struct {
	registry *ClientRegistry
	seen     map[TrackKey]bool
	tracks   []TrackRecord
}

func newTrackSet(registry *ClientRegistry) *trackSet {
	return &trackSet{
		registry: registry,
		seen:     make(map[TrackKey]bool),
	}
}

func (s *trackSet) add(row Row) {
	rec := TrackRecord{
		TrackID:      row["track"],
		ClientPID:    row["pid"],
		SampleRateHz: row["rate"],
	}
	if s.seen[rec.Key()] {
		return
	}
	s.seen[rec.Key()] = true
	rec.ApplicationID = s.registry.Resolve(rec.ClientPID)
	s.tracks = append(s.tracks, rec)
}
