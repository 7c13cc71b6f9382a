package customer

import (
	"strconv"
	"strings"
)

// Record is the normalized shape of one travel customer's policy-relevant
// facts. Source rows arrive with inconsistent field casing and blank
// conventions; FromRow folds them into this single shape before anything
// downstream sees them.
type Record struct {
	CustomerID      string  `json:"customer_id"`      // vac_id
	RIMSID          string  `json:"rims_id"`          // internal row id, used for memos
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	PrimaryPhone    string  `json:"primary_phone"`    // phn1
	SecondaryPhone  string  `json:"secondary_phone"`  // phn2
	PackageCode     string  `json:"package_code"`     // pkg_code
	CertificateCode string  `json:"certificate_code"` // pkg_code2
	ValDeposit      float64 `json:"val_dep"`
	ConfDeposit     float64 `json:"conf_deposit"`
	TravelDate      string  `json:"travel_date"`    // YYYY-MM-DD or blank sentinel
	ConfirmStatus   string  `json:"confirm_status"` // compared against the literal "confirm"
	TravelRep       string  `json:"travel_rep"`     // tm
	DocsSentDate    string  `json:"docs_sent_date"` // date_print_enc
	FlightRef       string  `json:"flight_ref"`     // agency_book_via
	HotelRef        string  `json:"hotel_ref"`      // htl_bk_via
}

// FullName joins first and last name, falling back to "Unknown Customer".
func (r *Record) FullName() string {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		return "Unknown Customer"
	}
	return name
}

// ResolutionCode returns the code used for knowledge-base resolution.
// Package code takes precedence over the certificate code.
func (r *Record) ResolutionCode() string {
	if r.PackageCode != "" {
		return r.PackageCode
	}
	return r.CertificateCode
}

// FromRow normalizes a raw table row into a Record. Field names are matched
// case-insensitively and missing or non-numeric amounts coerce to 0.
func FromRow(row map[string]any) *Record {
	folded := make(map[string]any, len(row))
	for k, v := range row {
		folded[strings.ToLower(k)] = v
	}
	return &Record{
		CustomerID:      stringField(folded, "vac_id"),
		RIMSID:          stringField(folded, "rims_id"),
		FirstName:       stringField(folded, "first_name"),
		LastName:        stringField(folded, "last_name"),
		Email:           stringField(folded, "email"),
		PrimaryPhone:    stringField(folded, "phn1"),
		SecondaryPhone:  stringField(folded, "phn2"),
		PackageCode:     stringField(folded, "pkg_code"),
		CertificateCode: stringField(folded, "pkg_code2"),
		ValDeposit:      numberField(folded, "val_dep"),
		ConfDeposit:     numberField(folded, "conf_deposit"),
		TravelDate:      stringField(folded, "asgn_trv_dt"),
		ConfirmStatus:   stringField(folded, "confirm_status"),
		TravelRep:       stringField(folded, "tm"),
		DocsSentDate:    stringField(folded, "date_print_enc"),
		FlightRef:       stringField(folded, "agency_book_via"),
		HotelRef:        stringField(folded, "htl_bk_via"),
	}
}

func stringField(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

func numberField(row map[string]any, key string) float64 {
	v, ok := row[key]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return 0
}
