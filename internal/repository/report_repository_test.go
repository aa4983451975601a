package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/internal/models"
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var reportJobRowColumns = []string{"id", "type", "department_id", "params", "status", "progress", "attempts", "result_url", "created_by", "created_at", "started_at", "finished_at", "error_message"}

func TestReportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs (id, type, department_id, params, status, progress, attempts, created_by, created_at)")).
		WithArgs(sqlmock.AnyArg(), "points", "cse", sqlmock.AnyArg(), "QUEUED", 0, 0, "hod-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		Type:      models.ReportTypePoints,
		Params:    models.ReportJobParams{DepartmentID: "cse", Format: models.ReportFormatCSV},
		CreatedBy: "hod-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.Equal(t, "cse", job.DepartmentID)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow(job.ID, "points", "cse", `{"departmentId":"cse","format":"csv"}`, "QUEUED", 0, 0, nil, "hod-1", time.Now(), nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, fetched.ID)
	assert.Equal(t, models.ReportFormatCSV, fetched.Params.Format)
	assert.False(t, fetched.Terminal())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryClaim(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)
	now := time.Now()

	claim := regexp.QuoteMeta("UPDATE report_jobs SET status = 'PROCESSING', progress = 10, attempts = attempts + 1, started_at = $2") +
		`\s+` + regexp.QuoteMeta("WHERE id = $1 AND status = 'QUEUED'")
	mock.ExpectExec(claim).WithArgs("job-1", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claim).WithArgs("job-1", now).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Claim(context.Background(), "job-1", now))
	err := repo.Claim(context.Background(), "job-1", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	status := models.ReportStatusFinished
	progress := 100
	result := "/api/v1/export/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, progress = $2, result_url = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateReportJobParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryResetStale(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = 'QUEUED', progress = 0 WHERE status = 'PROCESSING'")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	reset, err := repo.ResetStale(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, reset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-1", "clearance", "cse", `{"departmentId":"cse","format":"pdf"}`, "QUEUED", 0, 1, nil, "admin", time.Now(), nil, nil, "boom")
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].Attempts)
	assert.Equal(t, models.ReportTypeClearance, jobs[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListExpiredAndClear(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-1", "points", "cse", `{"departmentId":"cse","format":"csv"}`, "FINISHED", 100, 1, "/api/v1/export/token", "admin",
			time.Now().Add(-48*time.Hour), time.Now().Add(-47*time.Hour), time.Now().Add(-25*time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'FINISHED' AND result_url IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET result_url = NULL WHERE id = $1")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	jobs, err := repo.ListExpired(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].Terminal())
	require.NoError(t, repo.ClearResult(context.Background(), "job-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
