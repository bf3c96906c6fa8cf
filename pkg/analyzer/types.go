// Package analyzer turns dump text into an aggregated audio snapshot.
package analyzer

import (
	"sort"
	"strconv"

	"github.com/tl/afv/pkg/parser"
)

// AppCount is the number of active tracks owned by one application.
type AppCount struct {
	ApplicationID string `json:"application_id"`
	Tracks        int    `json:"tracks"`
}

// Snapshot is the parse result: active tracks plus derived aggregates.
type Snapshot struct {
	// Tracks are in discovery order.
	Tracks []parser.TrackRecord `json:"tracks"`

	// SampleRates are the distinct sample rates, ascending.
	SampleRates []string `json:"sample_rates"`

	// AppCounts are sorted by track count descending; ties keep
	// first-seen order.
	AppCounts []AppCount `json:"app_counts"`
}

// Aggregate computes the derived fields for tracks.
func Aggregate(tracks []parser.TrackRecord) *Snapshot {
	s := &Snapshot{
		Tracks:      tracks,
		SampleRates: []string{},
		AppCounts:   []AppCount{},
	}
	if s.Tracks == nil {
		s.Tracks = []parser.TrackRecord{}
	}

	seenRate := make(map[string]bool)
	appIndex := make(map[string]int)

	for _, t := range tracks {
		if !seenRate[t.SampleRateHz] {
			seenRate[t.SampleRateHz] = true
			s.SampleRates = append(s.SampleRates, t.SampleRateHz)
		}

		if i, ok := appIndex[t.ApplicationID]; ok {
			s.AppCounts[i].Tracks++
			continue
		}
		appIndex[t.ApplicationID] = len(s.AppCounts)
		s.AppCounts = append(s.AppCounts, AppCount{ApplicationID: t.ApplicationID, Tracks: 1})
	}

	sort.SliceStable(s.SampleRates, func(i, j int) bool {
		return lessRate(s.SampleRates[i], s.SampleRates[j])
	})
	sort.SliceStable(s.AppCounts, func(i, j int) bool {
		return s.AppCounts[i].Tracks > s.AppCounts[j].Tracks
	})

	return s
}

// lessRate orders numerically when both rates parse, textually otherwise.
func lessRate(a, b string) bool {
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return x < y
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// HasTracks reports whether any active track was found.
func (s *Snapshot) HasTracks() bool {
	return s != nil && len(s.Tracks) > 0
}

// Applications returns the number of distinct applications.
func (s *Snapshot) Applications() int {
	if s == nil {
		return 0
	}
	return len(s.AppCounts)
}
