package properties

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
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

// ImportCSV upserts listings by address line 1. Recognised columns are
// Address, City, "For Type", Price, Beds, Baths, "Owner/Agent" and Notes.
func (s *PropertyService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

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

		address := cell("Address")
		if address == "" {
			result.Skipped++
			continue
		}

		forType := models.ForSale
		if raw := cell("For Type"); raw != "" {
			parsed, err := models.ParseForType(raw)
			if err != nil {
				result.Skipped++
				continue
			}
			forType = parsed
		}

		var item models.Property
		err = db.Unscoped().Where("address_line1 = ?", address).First(&item).Error
		created := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !created {
			return result, fmt.Errorf("line %d: %w", line, err)
		}

		item.AddressLine1 = address
		item.City = cell("City")
		item.ForType = forType
		item.Price = digitsOnly(cell("Price"))
		item.Beds = parseCount(cell("Beds"))
		item.Baths = parseCount(cell("Baths"))
		item.OwnerName = models.TrimmedOrNil(ptr(cell("Owner/Agent")))
		item.Notes = models.TrimmedOrNil(ptr(cell("Notes")))

		if created {
			err = db.Create(&item).Error
		} else {
			err = db.Unscoped().Save(&item).Error
		}
		if err != nil {
			return result, fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.Logger.Info("Imported listings",
		logger.Int("created", result.Created),
		logger.Int("updated", result.Updated),
		logger.Int("skipped", result.Skipped))
	return result, nil
}

// digitsOnly keeps the digits of s; "$1,800/mo" is 1800
func digitsOnly(s string) *float64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseCount(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := types.ParseNumber(s)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

func ptr(s string) *string { return &s }
