package clients

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"realtor/app/models"
	"realtor/core/logger"
	"realtor/core/types"

	"gorm.io/gorm"
)

// ImportResult counts what an import did
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportCSV upserts contacts by lowercased email from a CSV with the
// columns "First Name", "Last Name", "Email" and "Tags". Rows without an
// email are skipped; blank cells keep the stored value.
func (s *ClientService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := indexHeader(header)

	result := &ImportResult{}
	db := s.DB.WithContext(ctx)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("line %d: %w", line, err)
		}

		cell := func(name string) string {
			if i, ok := col[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		emailAddr := strings.ToLower(cell("Email"))
		if emailAddr == "" {
			result.Skipped++
			continue
		}
		first, last, tags := cell("First Name"), cell("Last Name"), cell("Tags")

		var existing models.Client
		err = db.Unscoped().Where("email = ?", emailAddr).First(&existing).Error
		switch {
		case err == nil:
			if first != "" {
				existing.FirstName = first
			}
			if last != "" {
				existing.LastName = last
			}
			if tags != "" {
				existing.Tags = types.ParseTags(tags)
			}
			if err := db.Unscoped().Save(&existing).Error; err != nil {
				return result, fmt.Errorf("line %d: %w", line, err)
			}
			result.Updated++

		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.Client{
				FirstName:    first,
				LastName:     last,
				Email:        &emailAddr,
				RentalStatus: models.RentalNone,
				Tags:         types.ParseTags(tags),
			}
			if err := db.Create(item).Error; err != nil {
				return result, fmt.Errorf("line %d: %w", line, err)
			}
			result.Created++

		default:
			return result, fmt.Errorf("line %d: %w", line, err)
		}
	}

	s.Logger.Info("Imported contacts",
		logger.Int("created", result.Created),
		logger.Int("updated", result.Updated),
		logger.Int("skipped", result.Skipped))
	return result, nil
}

func indexHeader(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return col
}
