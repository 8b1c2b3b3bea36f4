package margin

import (
	"context"
	"net/http"

	"github.com/rpattn/grosscalc/internal/api"
	"github.com/rpattn/grosscalc/internal/domain"
)

// ProjectLister reads the persisted projects for the listing endpoint.
type ProjectLister interface {
	List(ctx context.Context) ([]domain.Project, error)
}

// marginRowDTO is the wire shape of one margin row. Percentages and money
// round to two decimals at this boundary only; computation stays exact.
type marginRowDTO struct {
	ProjectName           string   `json:"project_name"`
	TotalHours            float64  `json:"total_hours"`
	Budget                float64  `json:"budget"`
	GrossMarginPercentage *float64 `json:"gross_margin_percentage"`
	MarginDefined         bool     `json:"margin_defined"`
}

type marginSummaryDTO struct {
	TotalProjects           int     `json:"total_projects"`
	TotalHours              float64 `json:"total_hours"`
	TotalBudget             float64 `json:"total_budget"`
	AverageMarginPercentage float64 `json:"average_margin_percentage"`
}

type projectDTO struct {
	ProjectID   *int64  `json:"project_id,omitempty"`
	ProjectName string  `json:"project_name"`
	SOW         float64 `json:"sow"`
}

// Handler exposes margin reads over HTTP.
type Handler struct {
	service  *Service
	projects ProjectLister
}

func NewHandler(service *Service, projects ProjectLister) *Handler {
	return &Handler{service: service, projects: projects}
}

// Margins answers GET /margins with one row per ingested project.
func (h *Handler) Margins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rows, err := h.service.ComputeMargins(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]marginRowDTO, 0, len(rows))
	for _, row := range rows {
		dto := marginRowDTO{
			ProjectName:   row.ProjectName,
			TotalHours:    row.TotalHours.Round(2).InexactFloat64(),
			Budget:        row.Budget.Round(2).InexactFloat64(),
			MarginDefined: row.MarginDefined,
		}
		if row.MarginDefined {
			pct := row.GrossMarginPercentage.Round(2).InexactFloat64()
			dto.GrossMarginPercentage = &pct
		}
		dtos = append(dtos, dto)
	}

	api.WriteSuccess(w, dtos)
}

// Summary answers GET /margins/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rows, err := h.service.ComputeMargins(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := Summarize(rows)
	api.WriteSuccess(w, marginSummaryDTO{
		TotalProjects:           summary.TotalProjects,
		TotalHours:              summary.TotalHours.Round(2).InexactFloat64(),
		TotalBudget:             summary.TotalBudget.Round(2).InexactFloat64(),
		AverageMarginPercentage: summary.AverageMarginPercentage.Round(2).InexactFloat64(),
	})
}

// Projects answers GET /projects with the persisted project list.
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	projects, err := h.projects.List(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]projectDTO, 0, len(projects))
	for _, project := range projects {
		dtos = append(dtos, projectDTO{
			ProjectID:   project.ProjectID,
			ProjectName: project.ProjectName,
			SOW:         project.SOW.Round(2).InexactFloat64(),
		})
	}

	api.WriteSuccess(w, dtos)
}
