package govdesk

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/govdesk/govdesk/backend"
	"github.com/govdesk/govdesk/submissions"
	"github.com/govdesk/govdesk/views"
)

// submissionList applies the request's filters to the shared submission
// state. Filter order matches the dashboard: type, status, search,
// timeframe, then pagination. The returned slice is the full filtered
// set; l.Items holds just the visible page.
func (a *App) submissionList(c echo.Context) (views.SubmissionList, []submissions.Submission, error) {
	l := views.SubmissionList{
		Status:    c.QueryParam("status"),
		Query:     c.QueryParam("q"),
		Timeframe: c.QueryParam("timeframe"),
		LoadError: a.Submissions.LastError(),
	}
	// The all-types view answers both the bare path and an explicit
	// "all" segment.
	if ft := c.Param("formType"); ft != "" && ft != submissions.FilterAll {
		l.Type = submissions.FormType(ft)
		if !l.Type.Valid() {
			return l, nil, echo.NewHTTPError(http.StatusNotFound)
		}
	}

	subs := a.Submissions.All()
	subs = submissions.FilterType(subs, string(l.Type))
	subs = submissions.FilterStatus(subs, l.Status)
	subs = submissions.Search(subs, l.Query)
	subs = submissions.FilterTimeframe(subs, l.Timeframe, time.Now())

	l.Total = len(subs)
	l.Dist = submissions.StatusDistribution(subs)
	l.TypeCounts = submissions.CountByType(subs)
	l.TotalPages = submissions.TotalPages(len(subs))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	l.Page = submissions.ClampPage(page, len(subs))
	l.Items = submissions.Paginate(subs, l.Page)
	return l, subs, nil
}

func (a *App) handleSubmissions(c echo.Context) error {
	l, _, err := a.submissionList(c)
	if err != nil {
		return err
	}
	return Render(c, views.Submissions(a.page(c), l))
}

// handleSubmissionsCSV exports the whole filtered set, not just the
// visible page.
func (a *App) handleSubmissionsCSV(c echo.Context) error {
	_, subs, err := a.submissionList(c)
	if err != nil {
		return err
	}
	name := submissions.CSVFileName(time.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(submissions.CSV(subs)))
}

func (a *App) submissionParam(c echo.Context) (submissions.Submission, error) {
	ft := submissions.FormType(c.Param("formType"))
	if !ft.Valid() {
		return submissions.Submission{}, echo.NewHTTPError(http.StatusNotFound)
	}
	id := c.Param("id")
	if s, ok := a.Submissions.Get(ft, id); ok {
		return s, nil
	}
	// Not in shared state yet; read through to the backend.
	s, err := submissions.FetchByID(c.Request().Context(), a.Backend, ft, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return submissions.Submission{}, echo.NewHTTPError(http.StatusNotFound)
		}
		return submissions.Submission{}, err
	}
	return s, nil
}

func (a *App) handleSubmissionDetail(c echo.Context) error {
	s, err := a.submissionParam(c)
	if err != nil {
		return err
	}
	return Render(c, views.SubmissionDetail(a.page(c), s, a.detailFields(s)))
}

// detailFields resolves file-backed fields to their public URLs.
func (a *App) detailFields(s submissions.Submission) []views.DetailField {
	var fields []views.DetailField
	for _, f := range s.SummaryFields() {
		df := views.DetailField{Label: f.Label, Value: f.Value}
		if f.File {
			df.Value = ""
			df.FileURL = a.Backend.PublicURL(s.FormType.Bucket(), f.Value)
		}
		fields = append(fields, df)
	}
	return fields
}

func (a *App) handleSubmissionApprove(c echo.Context) error {
	ft := submissions.FormType(c.Param("formType"))
	if !ft.Valid() {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	id := c.Param("id")
	back := "/console/form_submits/" + string(ft) + "/" + id + "/"

	_, err := a.Submissions.Approve(c.Request().Context(), ft, id)
	switch {
	case errors.Is(err, submissions.ErrAlreadyApproved):
		return redirectErr(c, back, "This submission is already approved.")
	case errors.Is(err, backend.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound)
	case err != nil:
		a.Log.Error("approve failed", zap.String("form_type", string(ft)), zap.String("id", id), zap.Error(err))
		return redirectErr(c, back, "Failed to approve the submission. Please try again.")
	}
	return redirectMsg(c, back, "Submission approved.")
}

func (a *App) handleSubmissionPDF(c echo.Context) error {
	s, err := a.submissionParam(c)
	if err != nil {
		return err
	}
	doc, err := submissions.ExportPDF(s)
	if err != nil {
		return err
	}
	name := submissions.PDFFileName(s)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
