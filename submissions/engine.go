package submissions

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// PageSize is the fixed page length of every submissions table.
const PageSize = 10

// FilterAll is the sentinel that disables a status or type filter.
const FilterAll = "all"

// FilterStatus keeps submissions whose status equals want, or everything
// when want is the "all" sentinel. The source list is never mutated.
func FilterStatus(subs []Submission, want string) []Submission {
	if want == FilterAll || want == "" {
		return subs
	}
	var out []Submission
	for _, s := range subs {
		if string(s.Status) == want {
			out = append(out, s)
		}
	}
	return out
}

// FilterType keeps submissions of one form type, or everything when want
// is the "all" sentinel.
func FilterType(subs []Submission, want string) []Submission {
	if want == FilterAll || want == "" {
		return subs
	}
	var out []Submission
	for _, s := range subs {
		if string(s.FormType) == want {
			out = append(out, s)
		}
	}
	return out
}

// Search keeps submissions matching term anywhere: the formatted type
// label, the derived display name, or the full serialized record. The
// match is a case-insensitive substring check, deliberately blunt.
func Search(subs []Submission, term string) []Submission {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return subs
	}
	var out []Submission
	for _, s := range subs {
		if strings.Contains(strings.ToLower(s.FormType.Label()), term) ||
			strings.Contains(strings.ToLower(s.DisplayName()), term) ||
			strings.Contains(strings.ToLower(rawJSON(s)), term) {
			out = append(out, s)
		}
	}
	return out
}

// FilterTimeframe keeps submissions created within the dashboard's
// timeframe selector: "week" (7 days), "month" (30 days), or "all".
func FilterTimeframe(subs []Submission, timeframe string, now time.Time) []Submission {
	var cutoff time.Time
	switch timeframe {
	case "week":
		cutoff = now.AddDate(0, 0, -7)
	case "month":
		cutoff = now.AddDate(0, 0, -30)
	default:
		return subs
	}
	var out []Submission
	for _, s := range subs {
		if s.CreatedAt.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// TotalPages is the page count for n filtered submissions.
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the 1-based page of subs. Out-of-range pages are the
// caller's responsibility to clamp; they come back empty here.
func Paginate(subs []Submission, page int) []Submission {
	if page < 1 {
		return nil
	}
	start := (page - 1) * PageSize
	if start >= len(subs) {
		return nil
	}
	end := start + PageSize
	if end > len(subs) {
		end = len(subs)
	}
	return subs[start:end]
}

// ClampPage pins a requested page into [1, TotalPages(n)].
func ClampPage(page, n int) int {
	total := TotalPages(n)
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Recent returns the n most recently created submissions.
func Recent(subs []Submission, n int) []Submission {
	sorted := make([]Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// CountByType tallies submissions per form type.
func CountByType(subs []Submission) map[FormType]int {
	counts := make(map[FormType]int, len(AllFormTypes))
	for _, s := range subs {
		counts[s.FormType]++
	}
	return counts
}

// DayBucket is one day's submission counts per form type.
type DayBucket struct {
	Date   string // YYYY-MM-DD
	Counts map[FormType]int
	Total  int
}

// DailyCounts groups submissions by creation day and returns the last n
// days that saw any activity, oldest first. Days with zero submissions
// across all types are omitted.
func DailyCounts(subs []Submission, n int) []DayBucket {
	byDay := make(map[string]*DayBucket)
	for _, s := range subs {
		if s.CreatedAt.IsZero() {
			continue
		}
		day := s.CreatedAt.Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &DayBucket{Date: day, Counts: make(map[FormType]int)}
			byDay[day] = b
		}
		b.Counts[s.FormType]++
		b.Total++
	}
	buckets := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	if len(buckets) > n {
		buckets = buckets[len(buckets)-n:]
	}
	return buckets
}

// MonthBucket is one month's counts within a selected year. Months with
// no submissions appear with explicit zeros.
type MonthBucket struct {
	Month  time.Month
	Counts map[FormType]int
	Total  int
}

// MonthlyCounts buckets submissions of one year into twelve months.
func MonthlyCounts(subs []Submission, year int) []MonthBucket {
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i] = MonthBucket{Month: time.Month(i + 1), Counts: make(map[FormType]int)}
	}
	for _, s := range subs {
		if s.CreatedAt.IsZero() || s.CreatedAt.Year() != year {
			continue
		}
		b := &buckets[int(s.CreatedAt.Month())-1]
		b.Counts[s.FormType]++
		b.Total++
	}
	return buckets
}

// YearBucket is one year's counts per form type.
type YearBucket struct {
	Year   int
	Counts map[FormType]int
	Total  int
}

// YearlyCounts buckets submissions per year over the observed date range,
// with explicit zeros for quiet years in between.
func YearlyCounts(subs []Submission) []YearBucket {
	years := YearOptions(subs)
	if len(years) == 0 {
		return nil
	}
	buckets := make([]YearBucket, len(years))
	index := make(map[int]*YearBucket, len(years))
	for i, y := range years {
		buckets[i] = YearBucket{Year: y, Counts: make(map[FormType]int)}
		index[y] = &buckets[i]
	}
	for _, s := range subs {
		if s.CreatedAt.IsZero() {
			continue
		}
		if b, ok := index[s.CreatedAt.Year()]; ok {
			b.Counts[s.FormType]++
			b.Total++
		}
	}
	return buckets
}

// YearOptions derives the year selector from the observed min/max
// submission dates, not a fixed calendar range.
func YearOptions(subs []Submission) []int {
	minYear, maxYear := 0, 0
	for _, s := range subs {
		if s.CreatedAt.IsZero() {
			continue
		}
		y := s.CreatedAt.Year()
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if minYear == 0 {
		return nil
	}
	years := make([]int, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		years = append(years, y)
	}
	return years
}

// Distribution is the approved-versus-pending split of a filtered set.
// Anything that is not exactly "approved" (case-insensitively) counts as
// pending.
type Distribution struct {
	Approved int
	Pending  int
}

// StatusDistribution tallies the review-state split of subs.
func StatusDistribution(subs []Submission) Distribution {
	var d Distribution
	for _, s := range subs {
		if s.Status.Approved() {
			d.Approved++
		} else {
			d.Pending++
		}
	}
	return d
}

// csvHeader matches the export the review team already ingests.
var csvHeader = []string{"Form Type", "Submitted At", "Name/Title", "Status", "Details"}

// CSV serializes subs as the dashboard export: one header row plus one row
// per submission, fields comma-joined. The format carries no quoting or
// escaping of embedded commas; that is the documented export contract.
func CSV(subs []Submission) string {
	lines := make([]string, 0, len(subs)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, s := range subs {
		lines = append(lines, strings.Join([]string{
			s.FormType.Label(),
			formatTimestamp(s.CreatedAt),
			s.DisplayName(),
			string(s.Status),
			rawJSON(s),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// CSVFileName stamps the export download with the time it was taken.
func CSVFileName(now time.Time) string {
	return "submissions_" + now.UTC().Format("2006-01-02T15-04-05") + ".csv"
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// rawJSON is the full serialized record, compact so it stays on one CSV
// line and substring search sees every field value.
func rawJSON(s Submission) string {
	b, err := json.Marshal(s.Raw)
	if err != nil {
		return ""
	}
	return string(b)
}
