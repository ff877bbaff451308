package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shukatsu-kanri/api/internal/models"
	"github.com/shukatsu-kanri/api/internal/query"
	"github.com/shukatsu-kanri/api/internal/repository"
	"github.com/shukatsu-kanri/api/internal/utils"
)

type Repository interface {
	List(ctx context.Context, p query.ListParams) ([]models.Company, error)
	Search(ctx context.Context, keyword string) ([]models.Company, error)
	Create(ctx context.Context, c *models.Company) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	Update(ctx context.Context, id int64, p *models.CompanyPatch) (*models.Company, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
}

type Publisher interface {
	Publish(ctx context.Context, body string, headers amqp.Table) error
	Close() error
}

type CompanyHandler struct {
	Repo Repository
	Pub  Publisher
	AI   Enricher
	// PingDB reports store reachability for the health endpoint; nil skips
	// the check.
	PingDB func(ctx context.Context) error
}

func NewCompanyHandler(repo Repository, pub Publisher, ai Enricher) *CompanyHandler {
	return &CompanyHandler{Repo: repo, Pub: pub, AI: ai}
}

// requests must come in as /api/companies/{id}
func parseIDFromPath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "api" || parts[1] != "companies" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *CompanyHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "database": "skipped"}
	if h.PingDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.PingDB(ctx); err != nil {
			resp["database"] = "error"
			slog.Error("health_db_ping_failed", "err", err)
		} else {
			resp["database"] = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *CompanyHandler) Companies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {

	// list with filters, sort and pagination
	case http.MethodGet:
		q := r.URL.Query()
		p := query.ListParams{
			SortBy: q.Get("sort_by"),
			Order:  q.Get("order"),
		}
		if s := q.Get("status"); s != "" {
			p.Status = &s
		}
		if ind := q.Get("industry"); ind != "" {
			p.Industry = &ind
		}
		if pr := q.Get("priority"); pr != "" {
			n, err := strconv.Atoi(pr)
			if err != nil {
				utils.BadRequest(w, "priority must be an integer")
				return
			}
			p.Priority = &n
		}
		if s := q.Get("skip"); s != "" {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil {
				p.Skip = v
			}
		}
		if l := q.Get("limit"); l != "" {
			if v, err := strconv.ParseInt(l, 10, 64); err == nil {
				p.Limit = v
			}
		}

		// Bad sort keys are rejected here, before any store access.
		if err := p.Normalize(); err != nil {
			if errors.Is(err, query.ErrInvalidSortField) {
				utils.BadRequest(w, fmt.Sprintf("invalid sort field %q", q.Get("sort_by")))
				return
			}
			utils.BadRequest(w, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		list, err := h.Repo.List(ctx, p)
		if err != nil {
			slog.Error("list_companies_failed", "err", err)
			utils.InternalError(w)
			return
		}
		utils.WriteJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var dto CompanyCreateDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validateCreateDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}

		c := dto.toModel()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if _, err := h.Repo.Create(ctx, &c); err != nil {
			slog.Error("create_company_failed", "company_name", c.CompanyName, "err", err)
			utils.InternalError(w)
			return
		}

		h.publishEvent("created", &c)
		utils.WriteJSON(w, http.StatusCreated, c)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Search matches company_name by case-insensitive substring; it takes no
// filter, sort or pagination parameters.
func (h *CompanyHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		utils.BadRequest(w, "keyword is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	list, err := h.Repo.Search(ctx, keyword)
	if err != nil {
		slog.Error("search_companies_failed", "err", err)
		utils.InternalError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *CompanyHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	stats, err := h.Repo.Statistics(ctx)
	if err != nil {
		slog.Error("statistics_failed", "err", err)
		utils.InternalError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (h *CompanyHandler) CompanyByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDFromPath(r.URL.Path)
	if !ok {
		utils.NotFound(w, "company not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		c, err := h.Repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.NotFound(w, "company not found")
				return
			}
			slog.Error("get_company_failed", "id", id, "err", err)
			utils.InternalError(w)
			return
		}
		utils.WriteJSON(w, http.StatusOK, c)

	// PUT kept as an alias: the original client sends sparse payloads on
	// PUT, so both verbs apply patch semantics.
	case http.MethodPatch, http.MethodPut:
		var patch models.CompanyPatch
		if err := utils.DecodeStrict(r.Body, &patch); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validatePatch(&patch); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		merged, err := h.Repo.Update(ctx, id, &patch)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.NotFound(w, "company not found")
				return
			}
			slog.Error("update_company_failed", "id", id, "err", err)
			utils.InternalError(w)
			return
		}

		h.publishEvent("updated", merged)
		utils.WriteJSON(w, http.StatusOK, merged)

	case http.MethodDelete:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		// Fetch first so the event can carry the name.
		c, err := h.Repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.NotFound(w, "company not found")
				return
			}
			slog.Error("delete_company_failed", "id", id, "err", err)
			utils.InternalError(w)
			return
		}

		found, err := h.Repo.Delete(ctx, id)
		if err != nil {
			slog.Error("delete_company_failed", "id", id, "err", err)
			utils.InternalError(w)
			return
		}
		if !found {
			utils.NotFound(w, "company not found")
			return
		}

		h.publishEvent("deleted", c)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// publishEvent emits a mutation event. Headers carry no credential
// fields. Failures are logged and swallowed; the mutation already
// committed.
func (h *CompanyHandler) publishEvent(action string, c *models.Company) {
	if h.Pub == nil || c == nil {
		return
	}
	msg := fmt.Sprintf("company %s: %s", action, c.CompanyName)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := h.Pub.Publish(ctx, msg, amqp.Table{
		"action":       action,
		"company_id":   c.ID,
		"company_name": c.CompanyName,
		"status":       c.Status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Warn("publish_event_failed", "action", action, "id", c.ID, "err", err)
	}
}
