package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Optional is a JSON patch field that distinguishes three states the
// stdlib pointer trick cannot: key absent (Set=false), key present with
// null (Set=true, Valid=false), key present with a value (both true).
// encoding/json only invokes UnmarshalJSON for keys present in the
// payload, which is what makes Set reliable.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		var zero T
		o.Valid = false
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// FlexTime accepts either an RFC 3339 timestamp or a bare YYYY-MM-DD date,
// which is what the original client sends for ES deadlines.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = ts
		return nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		t.Time = ts
		return nil
	}
	return fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DD", s)
}

// CompanyPatch is a sparse update: only fields whose key appears in the
// payload are applied. Optional-typed fields may also be explicitly
// nulled, which clears them; nulling a non-clearable field (company_name,
// status, es_submitted, interview_count, priority) is rejected by the
// handler before the patch reaches the store.
type CompanyPatch struct {
	CompanyName       Optional[string]   `json:"company_name"`
	Industry          Optional[string]   `json:"industry"`
	JobType           Optional[string]   `json:"job_type"`
	Status            Optional[string]   `json:"status"`
	ESDeadline        Optional[FlexTime] `json:"es_deadline"`
	ESSubmitted       Optional[bool]     `json:"es_submitted"`
	InterviewCount    Optional[int]      `json:"interview_count"`
	NextInterviewDate Optional[FlexTime] `json:"next_interview_date"`
	WebsiteURL        Optional[string]   `json:"website_url"`
	RecruitURL        Optional[string]   `json:"recruit_url"`
	MypageID          Optional[string]   `json:"mypage_id"`
	MypagePassword    Optional[string]   `json:"mypage_password"`
	Salary            Optional[string]   `json:"salary"`
	Location          Optional[string]   `json:"location"`
	Notes             Optional[string]   `json:"notes"`
	InterviewNotes    Optional[string]   `json:"interview_notes"`
	Priority          Optional[int]      `json:"priority"`
}

// Empty reports whether no field at all was supplied.
func (p *CompanyPatch) Empty() bool {
	return !(p.CompanyName.Set || p.Industry.Set || p.JobType.Set ||
		p.Status.Set || p.ESDeadline.Set || p.ESSubmitted.Set ||
		p.InterviewCount.Set || p.NextInterviewDate.Set ||
		p.WebsiteURL.Set || p.RecruitURL.Set || p.MypageID.Set ||
		p.MypagePassword.Set || p.Salary.Set || p.Location.Set ||
		p.Notes.Set || p.InterviewNotes.Set || p.Priority.Set)
}
