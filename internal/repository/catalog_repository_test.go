package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCategoryRepositoryFindByIDLevels(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "points", "levels", "created_at"}).
		AddRow("sports", "Sports", nil, []byte(`[{"name":"College","points":5},{"name":"National","points":20}]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, points, levels, created_at FROM categories WHERE id = $1")).
		WithArgs("sports").
		WillReturnRows(rows)

	category, err := repo.FindByID(context.Background(), "sports")
	require.NoError(t, err)
	assert.False(t, category.Flat())
	points, ok := category.PointsFor("National")
	require.True(t, ok)
	assert.Equal(t, 20, points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepositoryListFlat(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "points", "levels", "created_at"}).
		AddRow("nss", "NSS", 10, []byte(`[]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM categories ORDER BY name ASC")).WillReturnRows(rows)

	categories, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.True(t, categories[0].Flat())
	points, ok := categories[0].PointsFor("")
	require.True(t, ok)
	assert.Equal(t, 10, points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "years", "created_at"}).
		AddRow("arch", "Architecture", `["First","Second","Third","Fourth","Fifth"]`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, years, created_at FROM departments WHERE id = $1")).
		WithArgs("arch").
		WillReturnRows(rows)

	department, err := repo.FindByID(context.Background(), "arch")
	require.NoError(t, err)
	assert.Equal(t, 5, department.ProgramLength(4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
