package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
)

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(availabilityFixture(), "Demo School", nil)

	result, err := svc.Export(context.Background(), "tt-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "timetable-tt-1-v1.csv", result.Filename)

	payload := string(result.Payload)
	assert.Contains(t, payload, "Class 9-A")
	assert.Contains(t, payload, "Class 9-B")
	assert.Contains(t, payload, "Mathematics / F1 / R101")
	assert.Contains(t, payload, "Free Period")
	// Day column plus the two slot columns.
	assert.Contains(t, payload, "Day,09:00-10:00,10:00-11:00")
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(availabilityFixture(), "", nil)

	result, err := svc.Export(context.Background(), "tt-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(availabilityFixture(), "", nil)

	_, err := svc.Export(context.Background(), "tt-1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRequiresID(t *testing.T) {
	svc := NewExportService(availabilityFixture(), "", nil)

	_, err := svc.Export(context.Background(), "", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
