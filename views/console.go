package views

import (
	"bytes"
	"strconv"

	"github.com/a-h/templ"

	"github.com/govdesk/govdesk/submissions"
)

// Dashboard carries everything the landing page shows: content counts,
// submission analytics, and the latest arrivals.
type Dashboard struct {
	TotalPosts      int
	PublishedPosts  int
	TotalCategories int

	TotalSubmissions int
	Dist             submissions.Distribution
	TypeCounts       map[submissions.FormType]int

	Range   string // daily, monthly, yearly
	Year    int    // selected year for the monthly chart
	Years   []int
	Daily   []submissions.DayBucket
	Monthly []submissions.MonthBucket
	Yearly  []submissions.YearBucket

	Recent    []submissions.Submission
	LoadError string
}

type chartSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

type chartPayload struct {
	Labels []string      `json:"labels"`
	Series []chartSeries `json:"series"`
}

func dailyChart(buckets []submissions.DayBucket) chartPayload {
	p := chartPayload{}
	for _, b := range buckets {
		p.Labels = append(p.Labels, b.Date)
	}
	for _, ft := range submissions.AllFormTypes {
		s := chartSeries{Name: ft.Label()}
		for _, b := range buckets {
			s.Data = append(s.Data, b.Counts[ft])
		}
		p.Series = append(p.Series, s)
	}
	return p
}

func monthlyChart(buckets []submissions.MonthBucket) chartPayload {
	p := chartPayload{}
	for _, b := range buckets {
		p.Labels = append(p.Labels, b.Month.String()[:3])
	}
	for _, ft := range submissions.AllFormTypes {
		s := chartSeries{Name: ft.Label()}
		for _, b := range buckets {
			s.Data = append(s.Data, b.Counts[ft])
		}
		p.Series = append(p.Series, s)
	}
	return p
}

func yearlyChart(buckets []submissions.YearBucket) chartPayload {
	p := chartPayload{}
	for _, b := range buckets {
		p.Labels = append(p.Labels, strconv.Itoa(b.Year))
	}
	for _, ft := range submissions.AllFormTypes {
		s := chartSeries{Name: ft.Label()}
		for _, b := range buckets {
			s.Data = append(s.Data, b.Counts[ft])
		}
		p.Series = append(p.Series, s)
	}
	return p
}

func statCard(buf *bytes.Buffer, label string, value int, href string) {
	buf.WriteString(`<a class="stat" href="` + href + `"><span class="stat-value">` + strconv.Itoa(value) + `</span>`)
	buf.WriteString(`<span class="stat-label">` + esc(label) + `</span></a>`)
}

// Console renders the dashboard page.
func Console(p Page, d Dashboard) templ.Component {
	p.Title = "Dashboard"
	p.Active = "dashboard"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>Dashboard</h1></div>`)
		if d.LoadError != "" {
			buf.WriteString(`<div class="banner banner-err">` + esc(d.LoadError) + `</div>`)
		}

		buf.WriteString(`<section class="stats">`)
		statCard(buf, "Posts", d.TotalPosts, "/console/posts/")
		statCard(buf, "Published", d.PublishedPosts, "/console/posts/")
		statCard(buf, "Categories", d.TotalCategories, "/console/categories/")
		statCard(buf, "Submissions", d.TotalSubmissions, "/console/form_submits/")
		statCard(buf, "Pending Review", d.Dist.Pending, "/console/form_submits/?status=pending")
		statCard(buf, "Approved", d.Dist.Approved, "/console/form_submits/?status=approved")
		buf.WriteString(`</section>`)

		buf.WriteString(`<section class="panel"><div class="panel-head"><h2>Submissions Over Time</h2>`)
		buf.WriteString(`<form class="inline-form" method="get" action="/console/">`)
		buf.WriteString(`<select name="range" onchange="this.form.submit()">`)
		for _, r := range []string{"daily", "monthly", "yearly"} {
			selected := ""
			if r == d.Range {
				selected = " selected"
			}
			buf.WriteString(`<option value="` + r + `"` + selected + `>` + esc(titleWord(r)) + `</option>`)
		}
		buf.WriteString(`</select>`)
		if d.Range == "monthly" && len(d.Years) > 0 {
			buf.WriteString(`<select name="year" onchange="this.form.submit()">`)
			for _, y := range d.Years {
				selected := ""
				if y == d.Year {
					selected = " selected"
				}
				buf.WriteString(`<option value="` + strconv.Itoa(y) + `"` + selected + `>` + strconv.Itoa(y) + `</option>`)
			}
			buf.WriteString(`</select>`)
		}
		buf.WriteString(`</form></div>`)

		var payload chartPayload
		switch d.Range {
		case "monthly":
			payload = monthlyChart(d.Monthly)
		case "yearly":
			payload = yearlyChart(d.Yearly)
		default:
			payload = dailyChart(d.Daily)
		}
		buf.WriteString(`<canvas class="chart" data-chart="bar" data-values="` + esc(jsonAttr(payload)) + `" width="920" height="280"></canvas>`)
		buf.WriteString(`</section>`)

		buf.WriteString(`<section class="panel-row">`)
		buf.WriteString(`<section class="panel"><div class="panel-head"><h2>By Form Type</h2></div>`)
		typePayload := chartPayload{Series: []chartSeries{{Name: "Submissions"}}}
		for _, ft := range submissions.AllFormTypes {
			typePayload.Labels = append(typePayload.Labels, ft.Label())
			typePayload.Series[0].Data = append(typePayload.Series[0].Data, d.TypeCounts[ft])
		}
		buf.WriteString(`<canvas class="chart" data-chart="bar" data-values="` + esc(jsonAttr(typePayload)) + `" width="440" height="240"></canvas>`)
		buf.WriteString(`</section>`)

		buf.WriteString(`<section class="panel"><div class="panel-head"><h2>Review Status</h2></div>`)
		statusPayload := chartPayload{
			Labels: []string{"Pending", "Approved"},
			Series: []chartSeries{{Name: "Submissions", Data: []int{d.Dist.Pending, d.Dist.Approved}}},
		}
		buf.WriteString(`<canvas class="chart" data-chart="pie" data-values="` + esc(jsonAttr(statusPayload)) + `" width="440" height="240"></canvas>`)
		buf.WriteString(`</section>`)
		buf.WriteString(`</section>`)

		buf.WriteString(`<section class="panel"><div class="panel-head"><h2>Recent Submissions</h2>`)
		buf.WriteString(`<a class="btn btn-ghost" href="/console/form_submits/">View All</a></div>`)
		if len(d.Recent) == 0 {
			buf.WriteString(`<p class="empty">No submissions yet.</p>`)
		} else {
			submissionTable(buf, d.Recent)
		}
		buf.WriteString(`</section>`)
	})
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
