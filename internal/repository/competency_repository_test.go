package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCompetencyRepository_FindByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCompetencyRepository(db)

	id1 := uuid.New()
	id2 := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "category", "active", "standard_codes"}).
		AddRow(id1.String(), "Communication", "soft-skills", true,
			`[{"taxonomy":"onet","code":"2.A.1.a","title":"Oral Comprehension"}]`).
		AddRow(id2.String(), "SQL", "technical", true, nil)

	mock.ExpectQuery(`SELECT id, name, category, active, standard_codes FROM competencies WHERE id = ANY\(\$1\)`).
		WithArgs(pq.Array([]string{id1.String(), id2.String()})).
		WillReturnRows(rows)

	out, err := repo.FindByIDs(context.Background(), []uuid.UUID{id1, id2})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Communication", out[0].Name)
	require.Len(t, out[0].StandardCodes, 1)
	assert.Equal(t, models.TaxonomyONet, out[0].StandardCodes[0].Taxonomy)
	assert.Equal(t, "2.A.1.a", out[0].StandardCodes[0].Code)

	assert.Equal(t, "SQL", out[1].Name)
	assert.Empty(t, out[1].StandardCodes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetencyRepository_FindByIDs_EmptySet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCompetencyRepository(db)

	out, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	// No query is issued for an empty id set.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetencyRepository_FindActiveByNames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCompetencyRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "category", "active", "standard_codes"}).
		AddRow(id.String(), "Problem Solving", "cognitive", true, nil)

	mock.ExpectQuery(`SELECT id, name, category, active, standard_codes FROM competencies WHERE active = true AND LOWER\(name\) = ANY\(\$1\)`).
		WithArgs(pq.Array([]string{"problem solving"})).
		WillReturnRows(rows)

	out, err := repo.FindActiveByNames(context.Background(), []string{"problem solving"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, id, out[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetencyRepository_CorruptStandardCodesDegrade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCompetencyRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "category", "active", "standard_codes"}).
		AddRow(id.String(), "Leadership", "soft-skills", true, `{broken`)

	mock.ExpectQuery(`SELECT .+ FROM competencies WHERE active = true ORDER BY name`).
		WillReturnRows(rows)

	out, err := repo.FindAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].StandardCodes)
}

func TestCompetencyRepository_QueryErrorWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCompetencyRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM competencies WHERE id = ANY\(\$1\)`).
		WillReturnError(assert.AnError)

	out, err := repo.FindByIDs(context.Background(), []uuid.UUID{uuid.New()})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "query competencies by ids")
}
