package appointment

import (
	"sort"
	"time"

	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

// Candidate is an event owned by the client whose start shares the target date and hour.
type Candidate struct {
	Event gcal.Event
	// Distance is the absolute difference in minutes from the target time.
	Distance int
	// Index is the event's position in the scanned slice.
	Index int
}

// Match is the selected candidate plus how many competed for it.
type Match struct {
	Event      *gcal.Event
	Candidates int
	Ambiguous  bool
}

// FindCandidates scans events in order and returns those owned by clientEmail that start on
// targetDate within the hour of targetTime, compared in loc. Minutes are ignored for eligibility.
// All-day events never match, nor does anything when the target cannot be parsed.
func FindCandidates(events []gcal.Event, clientEmail, targetDate, targetTime string, loc *time.Location) []Candidate {
	target, err := timeutil.CombineDateAndClock(targetDate, targetTime, loc)
	if err != nil {
		return nil
	}

	var out []Candidate
	for i, e := range events {
		if e.AllDay || e.Start.IsZero() || !ownedBy(e, clientEmail) {
			continue
		}

		start := e.Start.In(loc)
		if !timeutil.SameDate(start, target) || start.Hour() != target.Hour() {
			continue
		}

		out = append(out, Candidate{
			Event:    e,
			Distance: absInt(start.Minute() - target.Minute()),
			Index:    i,
		})
	}
	return out
}

// SelectCandidate picks the candidate closest to the target minute; ties keep scan order.
func SelectCandidate(candidates []Candidate) Match {
	if len(candidates) == 0 {
		return Match{}
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].Index < ranked[j].Index
	})

	event := ranked[0].Event
	return Match{
		Event:      &event,
		Candidates: len(ranked),
		Ambiguous:  len(ranked) > 1,
	}
}

// FindMatchingEvent returns the first event in scan order owned by clientEmail at the target
// date and hour, or nil.
func FindMatchingEvent(events []gcal.Event, clientEmail, targetDate, targetTime string, loc *time.Location) *gcal.Event {
	candidates := FindCandidates(events, clientEmail, targetDate, targetTime, loc)
	if len(candidates) == 0 {
		return nil
	}
	event := candidates[0].Event
	return &event
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
