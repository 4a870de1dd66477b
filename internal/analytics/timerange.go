package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
)

// Period is a parsed period token such as "30 days" or "1y".
type Period struct {
	N    int
	Unit string // day, week, month, year
}

var periodPattern = regexp.MustCompile(`^(\d+)\s*(d|days?|w|weeks?|months?|y|years?)$`)

// maxPeriodDays rejects windows longer than ten years.
const maxPeriodDays = 3660

// ParsePeriod accepts "7 days", "30 days", "90 days", "1 year", the compact
// forms 7d/30d/90d/1y and generally "<n> day(s)|week(s)|month(s)|year(s)".
func ParsePeriod(token string) (Period, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		t = util.DefaultPeriod
	}
	m := periodPattern.FindStringSubmatch(t)
	if m == nil {
		return Period{}, util.InvalidPeriod(fmt.Sprintf("unrecognised period %q", token))
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 || n > maxPeriodDays {
		return Period{}, util.InvalidPeriod(fmt.Sprintf("period length out of range in %q", token))
	}

	var p Period
	switch unit := strings.TrimSuffix(m[2], "s"); unit {
	case "d", "day":
		p = Period{N: n, Unit: "day"}
	case "w", "week":
		p = Period{N: n, Unit: "week"}
	case "month":
		p = Period{N: n, Unit: "month"}
	case "y", "year":
		p = Period{N: n, Unit: "year"}
	}
	if p.approxDays() > maxPeriodDays {
		return Period{}, util.InvalidPeriod(fmt.Sprintf("period %q is too long", token))
	}
	return p, nil
}

func (p Period) approxDays() int {
	switch p.Unit {
	case "week":
		return p.N * 7
	case "month":
		return p.N * 31
	case "year":
		return p.N * 366
	}
	return p.N
}

// Start returns the start of a window of this length ending at end.
func (p Period) Start(end time.Time) time.Time {
	switch p.Unit {
	case "week":
		return end.AddDate(0, 0, -7*p.N)
	case "month":
		return end.AddDate(0, -p.N, 0)
	case "year":
		return end.AddDate(-p.N, 0, 0)
	}
	return end.AddDate(0, 0, -p.N)
}

func (p Period) String() string {
	if p.N == 1 {
		return fmt.Sprintf("1 %s", p.Unit)
	}
	return fmt.Sprintf("%d %ss", p.N, p.Unit)
}

// PeriodRanges returns the current window [now-d, now) and the previous
// window of identical duration ending where the current one starts.
func PeriodRanges(token string, now time.Time) (current, previous model.TimeRange, err error) {
	p, err := ParsePeriod(token)
	if err != nil {
		return current, previous, err
	}
	start := p.Start(now)
	current = model.TimeRange{Start: start, End: now}
	previous = model.TimeRange{Start: start.Add(-now.Sub(start)), End: start}
	return current, previous, nil
}

// CurrentRange returns only the current window for a token.
func CurrentRange(token string, now time.Time) (model.TimeRange, error) {
	cur, _, err := PeriodRanges(token, now)
	return cur, err
}
