package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/pkg/spreadsheet"
)

func TestAlumni_SearchAcrossFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addAlumni("100", map[string]any{"First Name": "Zeynep", "Company Name": "Orbit"})
	env.addAlumni("200", map[string]any{"First Name": "Can", "Role": "Orbital Engineer"})
	env.addAlumni("300", map[string]any{"First Name": "Arda", "Hobby": "orbiting"})
	env.addAlumni("400", map[string]any{"First Name": "Ela"})
	svc := NewAlumniService(env.repos)

	page, err := svc.Search(ctx, "ORBIT", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)

	all, err := svc.Search(ctx, "  ", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Pagination.TotalItems)
}

func TestAlumni_SearchPaginates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for i := 0; i < 25; i++ {
		env.addAlumni(fmt.Sprint(1000+i), nil)
	}
	svc := NewAlumniService(env.repos)

	page, err := svc.Search(ctx, "", 3, 10)
	require.NoError(t, err)
	items, ok := page.Items.([]*models.AlumniRecord)
	require.True(t, ok)
	assert.Len(t, items, 5)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestAlumni_Export(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addAlumni("100", map[string]any{"First Name": "Zeynep", "Graduation Year": 2019, "Still Working": true})
	env.addAlumni("200", map[string]any{"First Name": "Can"})
	svc := NewAlumniService(env.repos)

	var buf bytes.Buffer
	n, err := svc.Export(ctx, "zeynep", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sheet, err := spreadsheet.ParseXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, ExportSheetName, sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, models.RequiredFields, sheet.Rows[0])
	assert.Equal(t, "Zeynep", sheet.Cell(1, 0))
	assert.Equal(t, "100", sheet.Cell(1, 2))
	assert.Equal(t, "2019", sheet.Cell(1, 3))
	assert.Equal(t, "Yes", sheet.Cell(1, 8))
}
