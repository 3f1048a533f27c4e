package submissions

import (
	"testing"
	"time"

	"github.com/govdesk/govdesk/backend"
)

func TestNormalizeTagsFormType(t *testing.T) {
	tables := []string{
		backend.TablePassports,
		backend.TableBirthCerts,
		backend.TableCompanies,
		backend.TableSoleProps,
	}
	for _, table := range tables {
		s, ok := Normalize(table, backend.Record{"id": "1"})
		if !ok {
			t.Fatalf("Normalize(%q) rejected a known table", table)
		}
		if !s.FormType.Valid() {
			t.Errorf("Normalize(%q) produced invalid form type %q", table, s.FormType)
		}
		if string(s.FormType) != table {
			t.Errorf("form type = %q, want %q", s.FormType, table)
		}
		if s.Status == "" {
			t.Errorf("Normalize(%q) left status empty", table)
		}
	}
}

func TestNormalizeRejectsUnknownTable(t *testing.T) {
	if _, ok := Normalize("blogs", backend.Record{"id": "1"}); ok {
		t.Error("Normalize accepted a non-form table")
	}
}

func TestNormalizeStatusDefaultsToPending(t *testing.T) {
	s, _ := Normalize(backend.TablePassports, backend.Record{"id": "1"})
	if s.Status != StatusPending {
		t.Errorf("status = %q, want pending", s.Status)
	}

	s, _ = Normalize(backend.TablePassports, backend.Record{"id": "1", "status": "approved"})
	if s.Status != StatusApproved {
		t.Errorf("status = %q, want approved", s.Status)
	}
}

func TestNormalizeDecodesVariant(t *testing.T) {
	s, _ := Normalize(backend.TablePassports, backend.Record{
		"id":         "p1",
		"first_name": "Ama",
		"surname":    "Mensah",
		"gender":     "F",
	})
	f, ok := s.Form.(PassportForm)
	if !ok {
		t.Fatalf("Form = %T, want PassportForm", s.Form)
	}
	if f.FirstName != "Ama" || f.Surname != "Mensah" {
		t.Errorf("fields = %+v", f)
	}
	if s.DisplayName() != "Ama Mensah" {
		t.Errorf("DisplayName = %q, want person name", s.DisplayName())
	}

	s, _ = Normalize(backend.TableCompanies, backend.Record{
		"id":              "c1",
		"business_name_1": "Accra Traders",
	})
	if s.DisplayName() != "Accra Traders" {
		t.Errorf("DisplayName = %q, want business name", s.DisplayName())
	}
}

func TestNormalizeTimestamps(t *testing.T) {
	s, _ := Normalize(backend.TableBirthCerts, backend.Record{
		"id":         "b1",
		"created_at": "2025-03-04T10:30:00Z",
		"updated_at": "2025-03-05T08:00:00Z",
	})
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not parsed: %+v", s)
	}
	if !s.EffectiveTime().Equal(time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("EffectiveTime should prefer updated_at, got %v", s.EffectiveTime())
	}

	// A record without timestamps sorts oldest: zero effective time.
	s, _ = Normalize(backend.TableBirthCerts, backend.Record{"id": "b2"})
	if !s.EffectiveTime().IsZero() {
		t.Errorf("missing timestamps should yield zero time, got %v", s.EffectiveTime())
	}
}

func TestFormTypeLabel(t *testing.T) {
	tests := []struct {
		ft   FormType
		want string
	}{
		{Passport, "Passport Applications"},
		{BirthCertificate, "Birth Certificates"},
		{Company, "Company Applications"},
		{SoleProprietorship, "Sole Proprietorship Applications"},
	}
	for _, tt := range tests {
		if got := tt.ft.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.ft, got, tt.want)
		}
	}
}

func TestSummaryFieldsExhaustive(t *testing.T) {
	rows := map[string]backend.Record{
		backend.TablePassports:  {"id": "1", "first_name": "A", "surname": "B"},
		backend.TableBirthCerts: {"id": "2", "first_name": "C", "surname": "D"},
		backend.TableCompanies:  {"id": "3", "business_name_1": "E"},
		backend.TableSoleProps:  {"id": "4", "business_name_1": "F"},
	}
	for table, rec := range rows {
		s, _ := Normalize(table, rec)
		fields := s.SummaryFields()
		if len(fields) == 0 {
			t.Errorf("SummaryFields empty for %q", table)
		}
		for _, f := range fields {
			if f.Label == "" {
				t.Errorf("unlabeled summary field for %q", table)
			}
		}
	}
}
