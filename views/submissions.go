package views

import (
	"bytes"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/govdesk/govdesk/submissions"
)

// SubmissionList carries one filtered, paginated page of the review
// dashboard.
type SubmissionList struct {
	Type      submissions.FormType // empty for the all-types view
	Status    string
	Query     string
	Timeframe string

	Items      []submissions.Submission
	Page       int
	TotalPages int
	Total      int
	Dist       submissions.Distribution
	TypeCounts map[submissions.FormType]int
	LoadError  string
}

func (l SubmissionList) basePath() string {
	if l.Type == "" {
		return "/console/form_submits/"
	}
	return "/console/form_submits/" + string(l.Type) + "/"
}

func (l SubmissionList) query(page int) string {
	q := url.Values{}
	if l.Status != "" && l.Status != submissions.FilterAll {
		q.Set("status", l.Status)
	}
	if l.Query != "" {
		q.Set("q", l.Query)
	}
	if l.Timeframe != "" && l.Timeframe != submissions.FilterAll {
		q.Set("timeframe", l.Timeframe)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Submissions renders the review dashboard: type tabs, filters, the
// paginated table, and the CSV export for the current filter set.
func Submissions(p Page, l SubmissionList) templ.Component {
	title := "All Submissions"
	if l.Type != "" {
		title = l.Type.Title()
	}
	p.Title = title
	p.Active = "submissions"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>` + esc(title) + `</h1>`)
		buf.WriteString(`<a class="btn" href="` + esc(l.basePath()+"export.csv"+l.query(0)) + `">Export CSV</a></div>`)
		if l.LoadError != "" {
			buf.WriteString(`<div class="banner banner-err">` + esc(l.LoadError) + `</div>`)
		}

		buf.WriteString(`<nav class="tabs">`)
		tab(buf, "/console/form_submits/", "All", l.Type == "")
		for _, ft := range submissions.AllFormTypes {
			tab(buf, "/console/form_submits/"+string(ft)+"/", ft.Label(), l.Type == ft)
		}
		buf.WriteString(`</nav>`)

		buf.WriteString(`<form class="filters" method="get" action="` + esc(l.basePath()) + `">`)
		buf.WriteString(`<input type="search" name="q" placeholder="Search submissions" value="` + esc(l.Query) + `">`)
		buf.WriteString(`<select name="status">`)
		statusOption(buf, submissions.FilterAll, "All Statuses", l.Status)
		statusOption(buf, "pending", "Pending", l.Status)
		statusOption(buf, "approved", "Approved", l.Status)
		buf.WriteString(`</select>`)
		buf.WriteString(`<select name="timeframe">`)
		statusOption(buf, submissions.FilterAll, "All Time", l.Timeframe)
		statusOption(buf, "week", "Past Week", l.Timeframe)
		statusOption(buf, "month", "Past Month", l.Timeframe)
		buf.WriteString(`</select>`)
		buf.WriteString(`<button type="submit" class="btn">Apply</button>`)
		buf.WriteString(`</form>`)

		// The all-types overview gets metric cards and charts; typed lists
		// stay a plain table.
		if l.Type == "" {
			buf.WriteString(`<section class="stats">`)
			statCard(buf, "Total", l.Total, "/console/form_submits/")
			statCard(buf, "Pending", l.Dist.Pending, "/console/form_submits/?status=pending")
			statCard(buf, "Approved", l.Dist.Approved, "/console/form_submits/?status=approved")
			for _, ft := range submissions.AllFormTypes {
				statCard(buf, ft.Label(), l.TypeCounts[ft], "/console/form_submits/"+string(ft)+"/")
			}
			buf.WriteString(`</section>`)

			buf.WriteString(`<section class="panel-row">`)
			buf.WriteString(`<section class="panel"><div class="panel-head"><h2>By Form Type</h2></div>`)
			typePayload := chartPayload{Series: []chartSeries{{Name: "Submissions"}}}
			for _, ft := range submissions.AllFormTypes {
				typePayload.Labels = append(typePayload.Labels, ft.Label())
				typePayload.Series[0].Data = append(typePayload.Series[0].Data, l.TypeCounts[ft])
			}
			buf.WriteString(`<canvas class="chart" data-chart="bar" data-values="` + esc(jsonAttr(typePayload)) + `" width="440" height="220"></canvas>`)
			buf.WriteString(`</section>`)
			buf.WriteString(`<section class="panel"><div class="panel-head"><h2>Review Status</h2></div>`)
			statusPayload := chartPayload{
				Labels: []string{"Pending", "Approved"},
				Series: []chartSeries{{Name: "Submissions", Data: []int{l.Dist.Pending, l.Dist.Approved}}},
			}
			buf.WriteString(`<canvas class="chart" data-chart="pie" data-values="` + esc(jsonAttr(statusPayload)) + `" width="440" height="220"></canvas>`)
			buf.WriteString(`</section>`)
			buf.WriteString(`</section>`)
		} else {
			buf.WriteString(`<p class="meta">` + strconv.Itoa(l.Total) + ` submissions · ` +
				strconv.Itoa(l.Dist.Pending) + ` pending · ` + strconv.Itoa(l.Dist.Approved) + ` approved</p>`)
		}

		if len(l.Items) == 0 {
			buf.WriteString(`<p class="empty">No submissions match the current filters.</p>`)
		} else {
			submissionTable(buf, l.Items)
		}

		if l.TotalPages > 1 {
			buf.WriteString(`<nav class="pager">`)
			if l.Page > 1 {
				buf.WriteString(`<a class="btn btn-ghost" href="` + esc(l.basePath()+l.query(l.Page-1)) + `">Previous</a>`)
			}
			buf.WriteString(`<span>Page ` + strconv.Itoa(l.Page) + ` of ` + strconv.Itoa(l.TotalPages) + `</span>`)
			if l.Page < l.TotalPages {
				buf.WriteString(`<a class="btn btn-ghost" href="` + esc(l.basePath()+l.query(l.Page+1)) + `">Next</a>`)
			}
			buf.WriteString(`</nav>`)
		}
	})
}

func tab(buf *bytes.Buffer, href, label string, active bool) {
	class := "tab"
	if active {
		class += " active"
	}
	buf.WriteString(`<a class="` + class + `" href="` + href + `">` + esc(label) + `</a>`)
}

func statusOption(buf *bytes.Buffer, value, label, current string) {
	selected := ""
	if value == current || (current == "" && value == submissions.FilterAll) {
		selected = " selected"
	}
	buf.WriteString(`<option value="` + esc(value) + `"` + selected + `>` + esc(label) + `</option>`)
}

func submissionTable(buf *bytes.Buffer, items []submissions.Submission) {
	buf.WriteString(`<table class="table"><thead><tr><th>Form Type</th><th>Name/Title</th><th>Submitted</th><th>Status</th><th></th></tr></thead><tbody>`)
	for _, s := range items {
		detail := "/console/form_submits/" + string(s.FormType) + "/" + s.ID + "/"
		buf.WriteString(`<tr><td>` + esc(s.FormType.Label()) + `</td>`)
		name := s.DisplayName()
		if name == "" {
			name = "—"
		}
		buf.WriteString(`<td>` + esc(name) + `</td>`)
		buf.WriteString(`<td>` + esc(s.CreatedAt.Format("2006-01-02 15:04")) + `</td>`)
		buf.WriteString(`<td>` + statusBadge(s.Status) + `</td>`)
		buf.WriteString(`<td class="row-actions"><a class="btn btn-ghost" href="` + esc(detail) + `">View</a></td></tr>`)
	}
	buf.WriteString(`</tbody></table>`)
}

func statusBadge(s submissions.Status) string {
	if s.Approved() {
		return `<span class="badge badge-ok">Approved</span>`
	}
	return `<span class="badge badge-warn">Pending</span>`
}

// DetailField is one rendered row of the detail panel. FileURL is the
// resolved public URL when the underlying value is a stored file.
type DetailField struct {
	Label   string
	Value   string
	FileURL string
}

// SubmissionDetail renders one application with its field summary, the
// approve action while pending, and the printable export.
func SubmissionDetail(p Page, s submissions.Submission, fields []DetailField) templ.Component {
	p.Title = s.FormType.Title()
	p.Active = "submissions"
	base := "/console/form_submits/" + string(s.FormType) + "/" + s.ID + "/"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>` + esc(s.FormType.Title()) + `</h1>`)
		buf.WriteString(`<a class="btn btn-ghost" href="/console/form_submits/` + esc(string(s.FormType)) + `/">Back</a>`)
		buf.WriteString(`<a class="btn" href="` + esc(base+"export.pdf") + `">Export PDF</a>`)
		if !s.Status.Approved() {
			buf.WriteString(`<form method="post" action="` + esc(base+"approve/") + `">`)
			csrfField(buf, p.CSRF)
			buf.WriteString(`<button type="submit" class="btn btn-primary">Approve</button></form>`)
		}
		buf.WriteString(`</div>`)

		buf.WriteString(`<p class="meta">Submitted ` + esc(s.CreatedAt.Format("2006-01-02 15:04")) + ` · ` + statusBadge(s.Status) + `</p>`)

		buf.WriteString(`<table class="table detail"><tbody>`)
		for _, f := range fields {
			buf.WriteString(`<tr><th>` + esc(f.Label) + `</th><td>`)
			switch {
			case f.FileURL != "":
				buf.WriteString(`<a href="` + esc(f.FileURL) + `" target="_blank" rel="noopener">View File</a>`)
			case f.Value == "":
				buf.WriteString(`<span class="muted">Not provided</span>`)
			default:
				buf.WriteString(esc(f.Value))
			}
			buf.WriteString(`</td></tr>`)
		}
		buf.WriteString(`</tbody></table>`)
	})
}
