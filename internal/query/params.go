// Package query validates list requests before they reach the store.
// Sort keys resolve through a fixed allow-list instead of reflecting on
// the record type, so a request can neither sort by a field that does not
// exist nor by the credential field.
package query

import "errors"

var ErrInvalidSortField = errors.New("invalid sort field")

// MaxLimit bounds a single page; larger requests are clamped, not
// rejected.
const (
	MaxLimit     = 500
	DefaultLimit = 100
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// sortKeys maps accepted sort_by values to their document keys.
// mypage_password is deliberately absent.
var sortKeys = map[string]string{
	"id":                  "_id",
	"company_name":        "company_name",
	"industry":            "industry",
	"job_type":            "job_type",
	"status":              "status",
	"es_deadline":         "es_deadline",
	"es_submitted":        "es_submitted",
	"interview_count":     "interview_count",
	"next_interview_date": "next_interview_date",
	"website_url":         "website_url",
	"recruit_url":         "recruit_url",
	"mypage_id":           "mypage_id",
	"salary":              "salary",
	"location":            "location",
	"notes":               "notes",
	"interview_notes":     "interview_notes",
	"priority":            "priority",
	"created_at":          "created_at",
	"updated_at":          "updated_at",
}

// SortKey resolves an API sort field name to its document key.
func SortKey(field string) (string, bool) {
	k, ok := sortKeys[field]
	return k, ok
}

// ListParams is a validated, normalized list request. Zero value is not
// usable; go through Normalize.
type ListParams struct {
	Status   *string
	Industry *string
	Priority *int

	SortBy string // document key, resolved via the allow-list
	Order  string // OrderAsc or OrderDesc

	Skip  int64
	Limit int64
}

// Normalize validates the sort field, fills defaults (created_at desc,
// limit 100) and clamps skip/limit. Returns ErrInvalidSortField without
// touching anything else when sort_by is not on the allow-list, so the
// caller never runs a query for a bad sort key.
func (p *ListParams) Normalize() error {
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	key, ok := SortKey(p.SortBy)
	if !ok {
		return ErrInvalidSortField
	}
	p.SortBy = key

	if p.Order != OrderAsc {
		p.Order = OrderDesc
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return nil
}
