// Package submissions holds the form-submission review domain: the
// normalizer that tags raw backend rows, the in-memory reviewed set, the
// filter/aggregate engine behind the dashboard, the approval workflow, and
// the CSV and printable exports.
package submissions

import (
	"strings"
	"time"

	"github.com/govdesk/govdesk/backend"
)

// FormType tags a submission with the table it originated from. The values
// are the table names themselves so the tag round-trips through routes and
// backend calls unchanged.
type FormType string

const (
	Passport           FormType = backend.TablePassports
	BirthCertificate   FormType = backend.TableBirthCerts
	Company            FormType = backend.TableCompanies
	SoleProprietorship FormType = backend.TableSoleProps
)

// AllFormTypes lists the four known form types in display order.
var AllFormTypes = []FormType{Passport, BirthCertificate, Company, SoleProprietorship}

// Valid reports whether ft is one of the four known form types.
func (ft FormType) Valid() bool {
	switch ft {
	case Passport, BirthCertificate, Company, SoleProprietorship:
		return true
	}
	return false
}

// Label is the human-readable form of the type tag ("Passport Applications").
func (ft FormType) Label() string {
	words := strings.Split(string(ft), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Title is the page heading used by the by-type list views.
func (ft FormType) Title() string {
	switch ft {
	case Passport:
		return "Passport Applications"
	case BirthCertificate:
		return "Birth Certificate Requests"
	case Company:
		return "Company Registrations"
	case SoleProprietorship:
		return "Sole Proprietorship Registrations"
	}
	return "All Submissions"
}

// Bucket is the storage bucket holding this form type's uploaded files.
func (ft FormType) Bucket() string {
	switch ft {
	case Passport:
		return backend.BucketPassportUploads
	case Company:
		return backend.BucketCompanyUploads
	case SoleProprietorship:
		return backend.BucketSolePropUploads
	}
	return backend.BucketUploads
}

// Status is a submission's review state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Approved reports whether the status is exactly "approved", ignoring
// case. Anything else collapses to pending for display and counting.
func (s Status) Approved() bool {
	return strings.EqualFold(string(s), string(StatusApproved))
}

// Form is the variant payload of a submission. Each of the four form
// types carries its own field set; rendering surfaces switch exhaustively
// over the concrete types.
type Form interface {
	// DisplayName is the person or business name shown in lists and
	// matched by search.
	DisplayName() string
	formType() FormType
}

// PassportForm is a passport application's field set.
type PassportForm struct {
	FirstName    string
	Surname      string
	DateOfBirth  string
	Gender       string
	PlaceOfBirth string
	Nationality  string
	PhotoFile    string
}

func (f PassportForm) DisplayName() string { return joinName(f.FirstName, f.Surname) }
func (f PassportForm) formType() FormType  { return Passport }

// BirthCertForm is a birth-certificate request's field set.
type BirthCertForm struct {
	FirstName     string
	Surname       string
	DateOfBirth   string
	PlaceOfBirth  string
	MotherName    string
	FatherName    string
	HospitalFile  string
}

func (f BirthCertForm) DisplayName() string { return joinName(f.FirstName, f.Surname) }
func (f BirthCertForm) formType() FormType  { return BirthCertificate }

// CompanyForm is a company registration's field set.
type CompanyForm struct {
	BusinessName1     string
	BusinessName2     string
	Sector            string
	RegisteredAddress string
	DirectorName      string
	SignatureFile     string
}

func (f CompanyForm) DisplayName() string { return f.BusinessName1 }
func (f CompanyForm) formType() FormType  { return Company }

// SolePropForm is a sole-proprietorship registration's field set.
type SolePropForm struct {
	BusinessName1 string
	BusinessName2 string
	OwnerName     string
	Sector        string
	Address       string
	SignatureFile string
}

func (f SolePropForm) DisplayName() string { return f.BusinessName1 }
func (f SolePropForm) formType() FormType  { return SoleProprietorship }

// Submission is one normalized application record. FormType and the
// derived label never persist; they are attached when a raw row enters
// shared state.
type Submission struct {
	ID        string
	FormType  FormType
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Form      Form
	// Raw is the full backend row, kept for the blunt full-record search
	// and the Details column of the CSV export.
	Raw backend.Record
}

// DisplayName is the derived name shown in lists: first name + surname for
// person forms, the primary business name for business forms.
func (s Submission) DisplayName() string {
	if s.Form == nil {
		return ""
	}
	return s.Form.DisplayName()
}

// EffectiveTime orders submissions most-recent first: last update when
// known, otherwise creation. Records missing both sort oldest.
func (s Submission) EffectiveTime() time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// Field is one label/value pair of a submission's detail rendering.
type Field struct {
	Label string
	Value string
	// File marks values that are storage paths rather than display text.
	File bool
}

// SummaryFields renders the variant's field set as ordered label/value
// pairs for the detail panel and the printable export. The switch must
// stay exhaustive over the form variants.
func (s Submission) SummaryFields() []Field {
	switch f := s.Form.(type) {
	case PassportForm:
		return []Field{
			{Label: "Full Name", Value: f.DisplayName()},
			{Label: "Date of Birth", Value: f.DateOfBirth},
			{Label: "Gender", Value: f.Gender},
			{Label: "Place of Birth", Value: f.PlaceOfBirth},
			{Label: "Nationality", Value: f.Nationality},
			{Label: "Passport Photo", Value: f.PhotoFile, File: true},
		}
	case BirthCertForm:
		return []Field{
			{Label: "Full Name", Value: f.DisplayName()},
			{Label: "Date of Birth", Value: f.DateOfBirth},
			{Label: "Place of Birth", Value: f.PlaceOfBirth},
			{Label: "Mother's Name", Value: f.MotherName},
			{Label: "Father's Name", Value: f.FatherName},
			{Label: "Hospital Record", Value: f.HospitalFile, File: true},
		}
	case CompanyForm:
		return []Field{
			{Label: "Business Name", Value: f.BusinessName1},
			{Label: "Alternative Name", Value: f.BusinessName2},
			{Label: "Sector", Value: f.Sector},
			{Label: "Registered Address", Value: f.RegisteredAddress},
			{Label: "Director", Value: f.DirectorName},
			{Label: "Signature", Value: f.SignatureFile, File: true},
		}
	case SolePropForm:
		return []Field{
			{Label: "Business Name", Value: f.BusinessName1},
			{Label: "Alternative Name", Value: f.BusinessName2},
			{Label: "Owner", Value: f.OwnerName},
			{Label: "Sector", Value: f.Sector},
			{Label: "Address", Value: f.Address},
			{Label: "Signature", Value: f.SignatureFile, File: true},
		}
	}
	return nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
