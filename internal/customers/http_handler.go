package customers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/filter"
	"github.com/rpattn/crmql/internal/repository"
	"github.com/rpattn/crmql/internal/segment"
)

type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/counts"):
		h.handleCounts(w, r)
	case strings.HasSuffix(path, "/count"):
		h.handleCount(w, r)
	default:
		h.handleList(w, r)
	}
}

type customerResponse struct {
	ID             string         `json:"id"`
	Code           string         `json:"code,omitempty"`
	FirstName      string         `json:"firstName,omitempty"`
	LastName       string         `json:"lastName,omitempty"`
	PrimaryEmail   string         `json:"primaryEmail,omitempty"`
	PrimaryPhone   string         `json:"primaryPhone,omitempty"`
	Status         string         `json:"status"`
	ProfileScore   int            `json:"profileScore"`
	IntegrationID  string         `json:"integrationId,omitempty"`
	IsUser         bool           `json:"isUser"`
	TagIDs         []string       `json:"tagIds"`
	LeadStatus     string         `json:"leadStatus,omitempty"`
	LifecycleState string         `json:"lifecycleState,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
	LastSeenAt     *time.Time     `json:"lastSeenAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type listResponse struct {
	Customers  []customerResponse `json:"customers"`
	TotalCount int                `json:"totalCount"`
	Page       int                `json:"page"`
	PerPage    int                `json:"perPage"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listResponse{
		Customers:  make([]customerResponse, 0, len(result.Customers)),
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PerPage:    result.PerPage,
	}
	for _, customer := range result.Customers {
		resp.Customers = append(resp.Customers, toCustomerResponse(customer))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	count, err := h.service.Count(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	by, err := ParseCountDimension(query.Get("by"))
	if err != nil {
		writeError(w, err)
		return
	}
	params, err := ParseListParams(query)
	if err != nil {
		writeError(w, err)
		return
	}
	counts, err := h.service.CountsBy(r.Context(), params, by)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"by": by, "counts": counts})
}

func toCustomerResponse(c domain.Customer) customerResponse {
	tagIDs := c.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return customerResponse{
		ID:             c.ID,
		Code:           c.Code,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		PrimaryEmail:   c.PrimaryEmail,
		PrimaryPhone:   c.PrimaryPhone,
		Status:         string(c.Status),
		ProfileScore:   c.ProfileScore,
		IntegrationID:  c.IntegrationID,
		IsUser:         c.IsUser,
		TagIDs:         tagIDs,
		LeadStatus:     c.LeadStatus,
		LifecycleState: c.LifecycleState,
		Properties:     c.Properties,
		LastSeenAt:     c.LastSeenAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// StatusFor maps a listing error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, filter.ErrInvalidParams), errors.Is(err, segment.ErrInvalidSegment):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[customers] request failed: %v", err)
		http.Error(w, "internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
