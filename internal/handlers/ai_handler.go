package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shukatsu-kanri/api/internal/enrich"
	"github.com/shukatsu-kanri/api/internal/utils"
)

type Enricher interface {
	Suggest(ctx context.Context, companyName string) (*enrich.Suggestion, error)
}

type aiCompanyInfoRequest struct {
	CompanyName string `json:"company_name"`
}

type aiCompanyInfoResponse struct {
	Industry   *string `json:"industry"`
	JobType    *string `json:"job_type"`
	Location   *string `json:"location"`
	Salary     *string `json:"salary"`
	WebsiteURL *string `json:"website_url"`
	Error      string  `json:"error,omitempty"`
}

// CompanyInfo asks the enrichment gateway to guess optional fields for a
// company name. Gateway failures come back as 200 with the error slot
// filled; the client decides whether to persist anything, through the
// normal update path.
func (h *CompanyHandler) CompanyInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req aiCompanyInfoRequest
	if err := utils.DecodeStrict(r.Body, &req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		utils.BadRequest(w, "company_name is required")
		return
	}

	s, err := h.AI.Suggest(r.Context(), req.CompanyName)
	if err != nil {
		var ge *enrich.GatewayError
		if errors.As(err, &ge) {
			utils.WriteJSON(w, http.StatusOK, aiCompanyInfoResponse{Error: ge.Reason})
			return
		}
		slog.Error("company_info_failed", "company_name", req.CompanyName, "err", err)
		utils.WriteJSON(w, http.StatusOK, aiCompanyInfoResponse{Error: "enrichment failed"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, aiCompanyInfoResponse{
		Industry:   s.Industry,
		JobType:    s.JobType,
		Location:   s.Location,
		Salary:     s.Salary,
		WebsiteURL: s.WebsiteURL,
	})
}
