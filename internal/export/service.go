package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/crmql/internal/customers"
	"github.com/rpattn/crmql/internal/domain"
)

const sheetName = "Customers"

var columns = []string{
	"ID", "Code", "First name", "Last name", "Email", "Phone", "Status", "Profile score",
	"Lead status", "Lifecycle state", "Integration", "Is user", "Tags", "Last seen at",
	"Created at", "Properties",
}

// Lister pages through a customer listing.
type Lister interface {
	List(ctx context.Context, params domain.CustomerListParams) (customers.ListResult, error)
}

type Service struct {
	lister   Lister
	pageSize int
	maxRows  int
	now      func() time.Time
}

type Option func(*Service)

func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithMaxRows caps how many customers a single workbook holds.
func WithMaxRows(rows int) Option {
	return func(s *Service) {
		if rows > 0 {
			s.maxRows = rows
		}
	}
}

func NewService(lister Lister, opts ...Option) *Service {
	service := &Service{
		lister:   lister,
		pageSize: 200,
		maxRows:  50000,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// FileName builds the download name of a workbook. The prefix is reduced to
// lowercase letters, digits and dashes.
func (s *Service) FileName(prefix string) string {
	base := sanitizeFileComponent(prefix)
	if base == "" {
		base = "customers"
	}
	return fmt.Sprintf("%s-%s-%s.xlsx", base, s.now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

// WriteWorkbook writes every customer matching params, in listing order, to
// an XLSX workbook on w and returns the number of data rows written.
func (s *Service) WriteWorkbook(ctx context.Context, w io.Writer, params domain.CustomerListParams) (int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	written := 0
	params.PerPage = s.pageSize
	for page := 1; written < s.maxRows; page++ {
		params.Page = page
		result, err := s.lister.List(ctx, params)
		if err != nil {
			return written, err
		}
		for _, customer := range result.Customers {
			if written >= s.maxRows {
				break
			}
			cell, err := excelize.CoordinatesToCellName(1, written+2)
			if err != nil {
				return written, err
			}
			if err := sw.SetRow(cell, customerRow(customer)); err != nil {
				return written, fmt.Errorf("failed to write row %d: %w", written+1, err)
			}
			written++
		}
		if len(result.Customers) < result.PerPage || page*result.PerPage >= result.TotalCount {
			break
		}
	}

	if err := sw.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return written, fmt.Errorf("failed to write workbook: %w", err)
	}
	log.Printf("[export] wrote %d customers", written)
	return written, nil
}

func customerRow(c domain.Customer) []any {
	return []any{
		c.ID,
		c.Code,
		c.FirstName,
		c.LastName,
		c.PrimaryEmail,
		c.PrimaryPhone,
		string(c.Status),
		c.ProfileScore,
		c.LeadStatus,
		c.LifecycleState,
		c.IntegrationID,
		formatValue(c.IsUser),
		strings.Join(c.TagIDs, ", "),
		formatValue(c.LastSeenAt),
		formatValue(c.CreatedAt),
		formatValue(c.Properties),
	}
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	return strings.Trim(builder.String(), "-")
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
