package customers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/filter"
)

func TestParseListParams(t *testing.T) {
	query := url.Values{
		"segment":              {"S1"},
		"ids":                  {"C1,C2", " C3 "},
		"searchValue":          {"john doe"},
		"startDate":            {"2024-03-01"},
		"endDate":              {"2024-03-31T23:59:59Z"},
		"page":                 {"2"},
		"perPage":              {"50"},
		"conformityMainType":   {"deal"},
		"conformityMainTypeId": {"D1"},
		"conformityIsSaved":    {"true"},
		"sortField":            {"createdAt"},
		"sortDirection":        {"1"},
	}

	params, err := ParseListParams(query)
	if err != nil {
		t.Fatalf("ParseListParams returned error: %v", err)
	}

	if !reflect.DeepEqual(params.IDs, []string{"C1", "C2", "C3"}) {
		t.Fatalf("unexpected ids %v", params.IDs)
	}
	if params.Segment != "S1" || params.SearchValue != "john doe" || params.Page != 2 || params.PerPage != 50 {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.StartDate == nil || !params.StartDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date %v", params.StartDate)
	}
	if params.EndDate == nil || params.EndDate.Day() != 31 {
		t.Fatalf("unexpected end date %v", params.EndDate)
	}
	if !params.ConformityIsSaved || params.ConformityIsRelated || params.ConformityMainTypeID != "D1" {
		t.Fatalf("unexpected conformity params %+v", params.ConformityQuery())
	}
	if params.SortDirection != domain.SortDirectionAsc {
		t.Fatalf("expected ascending sort, got %s", params.SortDirection)
	}
}

func TestParseListParamsDistinguishesAbsentAndEmptyIDs(t *testing.T) {
	params, err := ParseListParams(url.Values{})
	if err != nil || params.IDs != nil {
		t.Fatalf("expected nil ids when absent, got %v, %v", params.IDs, err)
	}

	params, err = ParseListParams(url.Values{"ids": {""}})
	if err != nil || params.IDs == nil || len(params.IDs) != 0 {
		t.Fatalf("expected empty non-nil ids, got %#v, %v", params.IDs, err)
	}
}

func TestParseListParamsRejectsMalformedValues(t *testing.T) {
	for key, value := range map[string]string{
		"startDate":         "yesterday",
		"page":              "-1",
		"perPage":           "ten",
		"conformityIsSaved": "maybe",
	} {
		if _, err := ParseListParams(url.Values{key: {value}}); !errors.Is(err, filter.ErrInvalidParams) {
			t.Errorf("%s=%s: expected ErrInvalidParams, got %v", key, value, err)
		}
	}
}

func TestHandlerList(t *testing.T) {
	lastSeen := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{
		customers: []domain.Customer{{ID: "C1", FirstName: "John", Status: domain.CustomerStatusActive, LastSeenAt: &lastSeen}},
		total:     1,
	}
	handler := NewHTTPHandler(newTestService(repo))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers?brand=B2&perPage=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.TotalCount != 1 || body.PerPage != 5 || len(body.Customers) != 1 || body.Customers[0].FirstName != "John" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Customers[0].TagIDs == nil {
		t.Fatalf("expected tagIds to encode as an empty list")
	}
	if !repo.lastQuery.IntegrationIDs.Equal(domain.NewIDSet("I3")) {
		t.Fatalf("expected brand B2 integrations, got %v", repo.lastQuery.IntegrationIDs.IDs())
	}
}

func TestHandlerCount(t *testing.T) {
	handler := NewHTTPHandler(newTestService(&stubCustomerRepo{total: 12}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/count?tag=T1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["count"] != 12 {
		t.Fatalf("unexpected count %v", body)
	}
}

func TestHandlerCounts(t *testing.T) {
	handler := NewHTTPHandler(newTestService(&stubCustomerRepo{total: 3}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/counts?by=tag", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		By     string           `json:"by"`
		Counts map[string]int64 `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.By != "tag" || !reflect.DeepEqual(body.Counts, map[string]int64{"T1": 3, "T2": 3}) {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHandlerErrorStatuses(t *testing.T) {
	handler := NewHTTPHandler(newTestService(&stubCustomerRepo{err: errors.New("db down")}))

	for _, tc := range []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/customers?startDate=soon", http.StatusBadRequest},
		{http.MethodGet, "/customers?form=F1&startDate=2024-03-10&endDate=2024-03-01", http.StatusBadRequest},
		{http.MethodGet, "/customers/counts?by=planet", http.StatusBadRequest},
		{http.MethodGet, "/customers?segment=S404", http.StatusNotFound},
		{http.MethodGet, "/customers", http.StatusInternalServerError},
		{http.MethodPost, "/customers", http.StatusMethodNotAllowed},
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		if rec.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.target, tc.want, rec.Code)
		}
	}
}
