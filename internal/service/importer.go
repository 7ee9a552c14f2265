package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
)

// ImportReport summarises a bulk catalog import.
type ImportReport struct {
	Created int           `json:"created"`
	Skipped []ImportError `json:"skipped,omitempty"`
}

// ImportError describes a row that was not imported.
type ImportError struct {
	Line   int    `json:"line"`
	Row    string `json:"row"`
	Reason string `json:"reason"`
}

// ImportIngredientsCSV creates ingredients from CSV with a header row naming
// the columns "name" and "measurement_unit". Rows that fail validation or
// collide with existing ingredients are reported and skipped.
func (s *CatalogService) ImportIngredientsCSV(ctx context.Context, actor domain.Actor, r io.Reader) (*ImportReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return importCSV(ctx, r, []string{"name", "measurement_unit"}, func(ctx context.Context, row map[string]string) error {
		_, err := s.createIngredient(ctx, CreateIngredientRequest{
			Name:            row["name"],
			MeasurementUnit: row["measurement_unit"],
		})
		return err
	})
}

// ImportTagsCSV creates tags from CSV with a header row naming the columns
// "name", "color" and optionally "slug".
func (s *CatalogService) ImportTagsCSV(ctx context.Context, actor domain.Actor, r io.Reader) (*ImportReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return importCSV(ctx, r, []string{"name", "color"}, func(ctx context.Context, row map[string]string) error {
		_, err := s.createTag(ctx, CreateTagRequest{
			Name:  row["name"],
			Color: row["color"],
			Slug:  row["slug"],
		})
		return err
	})
}

// importCSV reads a header row, checks it names every required column, then
// calls create for each data row. Per-row failures are collected; read
// errors and context cancellation abort the import.
func importCSV(ctx context.Context, r io.Reader, required []string, create func(context.Context, map[string]string) error) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domainerrors.Validation("empty CSV: missing header row")
		}
		return nil, domainerrors.Validation("unreadable CSV header").WithCause(err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, domainerrors.Validation(fmt.Sprintf("CSV header is missing column %q", col))
		}
	}

	report := &ImportReport{}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}

		if err := create(ctx, row); err != nil {
			report.Skipped = append(report.Skipped, ImportError{
				Line:   line,
				Row:    strings.Join(record, ", "),
				Reason: err.Error(),
			})
			continue
		}
		report.Created++
	}

	return report, nil
}
