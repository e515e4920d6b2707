package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validCatalog = `
jobs:
  - id: backend-eng
    title: Backend Engineer
    company: Acme
    location: Berlin
    employment_type: full-time
    remote: true
    skills: [Go, PostgreSQL, Kafka]
    requirements:
      - 3+ years building services
    salary:
      min: 70000
      max: 95000
      currency: EUR
    experience:
      min: 3
      max: 6
      unit: years
  - id: data-analyst
    title: Data Analyst
    company: Acme
    location: Remote
    employment_type: contract
    salary:
      min: 50000
      max: 70000
      currency: USD
`

func TestLoad_Valid(t *testing.T) {
	t.Parallel()
	c, err := Load(writeCatalog(t, validCatalog))
	require.NoError(t, err)

	p, err := c.Get("backend-eng")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", p.Title)
	assert.True(t, p.Remote)
	assert.Equal(t, 95000.0, p.Salary.Max)
	assert.Contains(t, p.Skills, "Kafka")

	all := c.List()
	require.Len(t, all, 2)
	assert.Equal(t, "backend-eng", all[0].ID, "list is ordered by id")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyCatalog(t *testing.T) {
	t.Parallel()
	_, err := Load(writeCatalog(t, "jobs: []\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLoad_DuplicateID(t *testing.T) {
	t.Parallel()
	body := `
jobs:
  - id: x
    title: One
    employment_type: full-time
    salary: {min: 1, max: 2, currency: USD}
  - id: x
    title: Two
    employment_type: full-time
    salary: {min: 1, max: 2, currency: USD}
`
	_, err := Load(writeCatalog(t, body))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLoad_InvalidSalaryBand(t *testing.T) {
	t.Parallel()
	body := `
jobs:
  - id: x
    title: One
    employment_type: full-time
    salary: {min: 90000, max: 50000, currency: USD}
`
	_, err := Load(writeCatalog(t, body))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLoad_EmploymentTypeOutsideEnum(t *testing.T) {
	t.Parallel()
	for _, et := range []string{"", "full_time", "freelance"} {
		body := `
jobs:
  - id: x
    title: One
    employment_type: "` + et + `"
    salary: {min: 1, max: 2, currency: USD}
`
		_, err := Load(writeCatalog(t, body))
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "employment_type %q must be rejected", et)
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()
	c, err := Load(writeCatalog(t, validCatalog))
	require.NoError(t, err)
	_, err = c.Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
