package export

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/rpattn/crmql/internal/customers"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

// ServeHTTP answers GET requests with a workbook of the customers matching
// the listing parameters of the query string.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	params, err := customers.ParseListParams(query)
	if err != nil {
		http.Error(w, err.Error(), customers.StatusFor(err))
		return
	}

	var buf bytes.Buffer
	if _, err := h.service.WriteWorkbook(r.Context(), &buf, params); err != nil {
		status := customers.StatusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[export] workbook failed: %v", err)
			http.Error(w, "export failed", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	filename := h.service.FileName(query.Get("filename"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
