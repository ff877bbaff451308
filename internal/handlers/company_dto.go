package handlers

import "github.com/shukatsu-kanri/api/internal/models"

// Only the contract fields; id and both timestamps are server-assigned.
type CompanyCreateDTO struct {
	CompanyName       string           `json:"company_name"`
	Industry          *string          `json:"industry"`
	JobType           *string          `json:"job_type"`
	Status            string           `json:"status"`
	ESDeadline        *models.FlexTime `json:"es_deadline"`
	ESSubmitted       bool             `json:"es_submitted"`
	InterviewCount    int              `json:"interview_count"`
	NextInterviewDate *models.FlexTime `json:"next_interview_date"`
	WebsiteURL        *string          `json:"website_url"`
	RecruitURL        *string          `json:"recruit_url"`
	MypageID          *string          `json:"mypage_id"`
	MypagePassword    *string          `json:"mypage_password"`
	Salary            *string          `json:"salary"`
	Location          *string          `json:"location"`
	Notes             *string          `json:"notes"`
	InterviewNotes    *string          `json:"interview_notes"`
	// Pointer so "omitted" can default to 3 instead of 0.
	Priority *int `json:"priority"`
}

func (d *CompanyCreateDTO) toModel() models.Company {
	c := models.Company{
		CompanyName:    d.CompanyName,
		Industry:       d.Industry,
		JobType:        d.JobType,
		Status:         d.Status,
		ESSubmitted:    d.ESSubmitted,
		InterviewCount: d.InterviewCount,
		WebsiteURL:     d.WebsiteURL,
		RecruitURL:     d.RecruitURL,
		MypageID:       d.MypageID,
		MypagePassword: d.MypagePassword,
		Salary:         d.Salary,
		Location:       d.Location,
		Notes:          d.Notes,
		InterviewNotes: d.InterviewNotes,
		Priority:       models.DefaultPriority,
	}
	if c.Status == "" {
		c.Status = models.DefaultStatus
	}
	if d.Priority != nil {
		c.Priority = *d.Priority
	}
	if d.ESDeadline != nil {
		t := d.ESDeadline.Time.UTC()
		c.ESDeadline = &t
	}
	if d.NextInterviewDate != nil {
		t := d.NextInterviewDate.Time.UTC()
		c.NextInterviewDate = &t
	}
	return c
}

// Patch updates decode straight into models.CompanyPatch; its Optional
// fields keep "omitted" and "explicitly null" apart.
