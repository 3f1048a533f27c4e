package submissions

import (
	"time"

	"github.com/govdesk/govdesk/backend"
)

// Normalize tags a raw backend row with the form type of the table it was
// read from, defaults the status to pending, and decodes the variant field
// set. It returns false for tables that are not one of the four known
// forms; nothing unknown ever enters shared state.
func Normalize(table string, rec backend.Record) (Submission, bool) {
	ft := FormType(table)
	if !ft.Valid() {
		return Submission{}, false
	}

	s := Submission{
		ID:        str(rec, "id"),
		FormType:  ft,
		Status:    StatusPending,
		CreatedAt: parseTime(str(rec, "created_at")),
		UpdatedAt: parseTime(str(rec, "updated_at")),
		Raw:       rec,
	}
	if v := str(rec, "status"); v != "" {
		s.Status = Status(v)
	}

	switch ft {
	case Passport:
		s.Form = PassportForm{
			FirstName:    str(rec, "first_name"),
			Surname:      str(rec, "surname"),
			DateOfBirth:  str(rec, "date_of_birth"),
			Gender:       str(rec, "gender"),
			PlaceOfBirth: str(rec, "place_of_birth"),
			Nationality:  str(rec, "nationality"),
			PhotoFile:    str(rec, "photo_file"),
		}
	case BirthCertificate:
		s.Form = BirthCertForm{
			FirstName:    str(rec, "first_name"),
			Surname:      str(rec, "surname"),
			DateOfBirth:  str(rec, "date_of_birth"),
			PlaceOfBirth: str(rec, "place_of_birth"),
			MotherName:   str(rec, "mother_name"),
			FatherName:   str(rec, "father_name"),
			HospitalFile: str(rec, "hospital_record_file"),
		}
	case Company:
		s.Form = CompanyForm{
			BusinessName1:     str(rec, "business_name_1"),
			BusinessName2:     str(rec, "business_name_2"),
			Sector:            str(rec, "sector"),
			RegisteredAddress: str(rec, "registered_address"),
			DirectorName:      str(rec, "director_name"),
			SignatureFile:     str(rec, "signature_file"),
		}
	case SoleProprietorship:
		s.Form = SolePropForm{
			BusinessName1: str(rec, "business_name_1"),
			BusinessName2: str(rec, "business_name_2"),
			OwnerName:     str(rec, "owner_name"),
			Sector:        str(rec, "sector"),
			Address:       str(rec, "address"),
			SignatureFile: str(rec, "signature_file"),
		}
	}
	return s, true
}

func str(rec backend.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

// timeLayouts covers the timestamp shapes the intake forms have been seen
// writing. Anything unparseable is treated as missing (sorts oldest).
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
