package models

import "time"

// Company is one job-application record. One document per company.
// Optional fields are pointers so an unset field round-trips as JSON null
// and is stored as a missing key in Mongo (omitempty on the bson tag).
type Company struct {
	ID                int64      `bson:"_id" json:"id"`
	CompanyName       string     `bson:"company_name" json:"company_name"`
	Industry          *string    `bson:"industry,omitempty" json:"industry"`
	JobType           *string    `bson:"job_type,omitempty" json:"job_type"`
	Status            string     `bson:"status" json:"status"`
	ESDeadline        *time.Time `bson:"es_deadline,omitempty" json:"es_deadline"`
	ESSubmitted       bool       `bson:"es_submitted" json:"es_submitted"`
	InterviewCount    int        `bson:"interview_count" json:"interview_count"`
	NextInterviewDate *time.Time `bson:"next_interview_date,omitempty" json:"next_interview_date"`
	WebsiteURL        *string    `bson:"website_url,omitempty" json:"website_url"`
	RecruitURL        *string    `bson:"recruit_url,omitempty" json:"recruit_url"`
	MypageID          *string    `bson:"mypage_id,omitempty" json:"mypage_id"`
	// Stored as-is for behavioral parity with the original app; kept in its
	// own field so encryption-at-rest can be added without reshaping the
	// record. Must never appear in logs or event headers.
	MypagePassword *string `bson:"mypage_password,omitempty" json:"mypage_password"`
	Salary         *string `bson:"salary,omitempty" json:"salary"`
	Location       *string `bson:"location,omitempty" json:"location"`
	Notes          *string `bson:"notes,omitempty" json:"notes"`
	InterviewNotes *string `bson:"interview_notes,omitempty" json:"interview_notes"`
	// 1 (highest) .. 5 (lowest), default 3.
	Priority  int       `bson:"priority" json:"priority"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Defaults applied at creation when the client omits the field.
const (
	DefaultStatus   = StatusEntered
	DefaultPriority = 3

	PriorityMin = 1
	PriorityMax = 5
)

// Canonical application-stage values. Status is stored as free text, so a
// record may carry any string; only these five are bucketed by the
// statistics aggregation.
const (
	StatusEntered           = "entered"
	StatusDocumentScreening = "document-screening"
	StatusInterviewing      = "interviewing"
	StatusOffer             = "offer"
	StatusRejected          = "rejected"
)

// CanonicalStatuses in the order the statistics endpoint reports them.
func CanonicalStatuses() []string {
	return []string{
		StatusEntered,
		StatusDocumentScreening,
		StatusInterviewing,
		StatusOffer,
		StatusRejected,
	}
}

// Statistics is the aggregate view over all records. ByStatus always has
// exactly the five canonical keys; records with any other status count
// toward Total only.
type Statistics struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}
