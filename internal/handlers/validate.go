package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shukatsu-kanri/api/internal/models"
)

func validateCreateDTO(d CompanyCreateDTO) error {
	if strings.TrimSpace(d.CompanyName) == "" {
		return errors.New("company_name is required")
	}
	if d.InterviewCount < 0 {
		return errors.New("interview_count must be >= 0")
	}
	if d.Priority != nil && (*d.Priority < models.PriorityMin || *d.Priority > models.PriorityMax) {
		return fmt.Errorf("priority must be between %d and %d", models.PriorityMin, models.PriorityMax)
	}
	return nil
}

func validatePatch(p *models.CompanyPatch) error {
	if p.Empty() {
		return errors.New("at least one field must be supplied")
	}
	if p.CompanyName.Set {
		if !p.CompanyName.Valid || strings.TrimSpace(p.CompanyName.Value) == "" {
			return errors.New("company_name cannot be empty")
		}
	}
	if p.Status.Set && !p.Status.Valid {
		return errors.New("status cannot be null")
	}
	if p.ESSubmitted.Set && !p.ESSubmitted.Valid {
		return errors.New("es_submitted cannot be null")
	}
	if p.InterviewCount.Set {
		if !p.InterviewCount.Valid {
			return errors.New("interview_count cannot be null")
		}
		if p.InterviewCount.Value < 0 {
			return errors.New("interview_count must be >= 0")
		}
	}
	if p.Priority.Set {
		if !p.Priority.Valid {
			return errors.New("priority cannot be null")
		}
		if p.Priority.Value < models.PriorityMin || p.Priority.Value > models.PriorityMax {
			return fmt.Errorf("priority must be between %d and %d", models.PriorityMin, models.PriorityMax)
		}
	}
	return nil
}
