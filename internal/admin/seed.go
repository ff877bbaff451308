package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/shukatsu-kanri/api/internal/models"
	"github.com/shukatsu-kanri/api/internal/repository"
)

//go:embed seeds/companies.json
var companiesJSON []byte

type seedItem struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	JobType     string `json:"job_type"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Priority    int    `json:"priority"`
}

// Idempotent: a company whose exact name already exists is skipped.
func SeedCompanies(ctx context.Context, repo *repository.CompanyRepository, log *slog.Logger) error {
	var items []seedItem
	if err := json.Unmarshal(companiesJSON, &items); err != nil {
		return err
	}

	for _, s := range items {
		if strings.TrimSpace(s.CompanyName) == "" {
			log.Warn("seed_skip_empty_name")
			continue
		}

		// short per-item timeout so one bad item doesn't hang the task
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		existing, err := repo.Search(ictx, s.CompanyName)
		if err != nil {
			cancel()
			return err
		}
		exists := false
		for _, e := range existing {
			if e.CompanyName == s.CompanyName {
				exists = true
				break
			}
		}
		if exists {
			cancel()
			log.Info("seed_company_exists", "company_name", s.CompanyName)
			continue
		}

		c := models.Company{
			CompanyName: s.CompanyName,
			Status:      s.Status,
			Priority:    s.Priority,
		}
		if c.Status == "" {
			c.Status = models.DefaultStatus
		}
		if c.Priority == 0 {
			c.Priority = models.DefaultPriority
		}
		if s.Industry != "" {
			v := s.Industry
			c.Industry = &v
		}
		if s.JobType != "" {
			v := s.JobType
			c.JobType = &v
		}
		if s.Location != "" {
			v := s.Location
			c.Location = &v
		}

		_, err = repo.Create(ictx, &c)
		cancel()
		if err != nil {
			return err
		}
		log.Info("seed_company_created", "company_name", c.CompanyName, "id", c.ID)
	}

	log.Info("seed_companies_done", "count", len(items))
	return nil
}
