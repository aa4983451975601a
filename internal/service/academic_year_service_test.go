package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

type academicYearStoreStub struct {
	records []models.AcademicYear
}

func (a *academicYearStoreStub) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	for i := range a.records {
		if a.records[i].IsActive {
			record := a.records[i]
			return &record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (a *academicYearStoreStub) List(ctx context.Context) ([]models.AcademicYear, error) {
	result := make([]models.AcademicYear, len(a.records))
	for i := range a.records {
		result[len(a.records)-1-i] = a.records[i]
	}
	return result, nil
}

func (a *academicYearStoreStub) Start(ctx context.Context, year *models.AcademicYear) error {
	for i := range a.records {
		if a.records[i].IsActive {
			a.records[i].IsActive = false
			ended := year.StartedAt
			a.records[i].EndedAt = &ended
		}
	}
	year.ID = "year-" + year.Label
	year.IsActive = true
	a.records = append(a.records, *year)
	return nil
}

type departmentStoreStub struct {
	departments map[string]models.Department
}

func (d *departmentStoreStub) FindByID(ctx context.Context, id string) (*models.Department, error) {
	department, ok := d.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &department, nil
}

type schedulerFixture struct {
	svc      *AcademicYearService
	years    *academicYearStoreStub
	students *studentStoreStub
	audit    *auditRecorder
	metrics  *MetricsService
}

func newSchedulerFixture(students ...models.Student) *schedulerFixture {
	years := &academicYearStoreStub{records: []models.AcademicYear{{
		ID: "year-2024-25", Label: "2024-25", IsActive: true, StartedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}}}
	store := newStudentStoreStub(students...)
	departments := &departmentStoreStub{departments: map[string]models.Department{
		"cse":  {ID: "cse", Name: "Computer Science", Years: models.DepartmentYears{"First", "Second", "Third", "Fourth"}},
		"arch": {ID: "arch", Name: "Architecture", Years: models.DepartmentYears{"First", "Second", "Third", "Fourth", "Fifth"}},
	}}
	audit := &auditRecorder{}
	metrics := NewMetricsService()
	ledgerSvc := NewLedgerService(store, testRequirements, nil, 0, nil)
	svc := NewAcademicYearService(years, store, departments, ledgerSvc, nil, metrics, audit, nil, nil, 4)
	return &schedulerFixture{svc: svc, years: years, students: store, audit: audit, metrics: metrics}
}

func activeStudent(id, department, joinYear, joinAcademicYear, currentYear, currentAcademicYear string) models.Student {
	return models.Student{
		ID:                  id,
		UserID:              "user-" + id,
		DepartmentID:        department,
		JoinYear:            joinYear,
		JoinAcademicYear:    joinAcademicYear,
		CurrentYear:         currentYear,
		CurrentAcademicYear: currentAcademicYear,
		Status:              models.StudentStatusActive,
	}
}

func TestAcademicYearServiceStartNewYear(t *testing.T) {
	passing := activeStudent("pass", "cse", "First", "2023-24", "Second", "2024-25")
	passing.Year2Points = 100
	failing := activeStudent("fail", "cse", "First", "2023-24", "Second", "2024-25")
	failing.Year2Points = 50
	final := activeStudent("final", "cse", "First", "2021-22", "Fourth", "2024-25")
	final.Year4Points = 150
	done := activeStudent("done", "cse", "First", "2025-26", "First", "2025-26")
	broken := activeStudent("broken", "cse", "First", "2023-24", "Ninth", "2024-25")
	alumni := activeStudent("old", "cse", "First", "2019-20", "Fourth", "2022-23")
	alumni.Status = models.StudentStatusAlumni

	f := newSchedulerFixture(passing, failing, final, done, broken, alumni)
	summary, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, claimsFor(models.RoleAdmin, "admin", ""))
	require.NoError(t, err)

	assert.Equal(t, "2025-26", summary.AcademicYear)
	assert.Equal(t, 1, summary.Promoted)
	assert.Equal(t, 1, summary.Graduated)
	assert.Equal(t, 1, summary.HeldBack)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "broken", summary.Errors[0].StudentID)

	promoted := f.students.students["pass"]
	assert.Equal(t, models.StudentStatusActive, promoted.Status)
	assert.Equal(t, "Third", promoted.CurrentYear)
	assert.Equal(t, "2025-26", promoted.CurrentAcademicYear)

	held := f.students.students["fail"]
	assert.Equal(t, models.StudentStatusPendingClearance, held.Status)
	assert.Equal(t, "Second", held.CurrentYear)
	assert.Equal(t, "2024-25", held.CurrentAcademicYear)

	graduated := f.students.students["final"]
	assert.Equal(t, models.StudentStatusAlumni, graduated.Status)
	assert.Equal(t, "Fourth", graduated.CurrentYear)
	assert.Equal(t, "2024-25", graduated.CurrentAcademicYear)

	assert.Equal(t, models.StudentStatusAlumni, f.students.students["old"].Status)
	assert.Equal(t, "2022-23", f.students.students["old"].CurrentAcademicYear)

	require.Len(t, f.years.records, 2)
	assert.False(t, f.years.records[0].IsActive)
	assert.NotNil(t, f.years.records[0].EndedAt)
	record := f.years.records[1]
	assert.True(t, record.IsActive)
	assert.Equal(t, "2025-26", record.Label)
	assert.Equal(t, 5, record.TotalStudents)
	assert.Equal(t, 1, record.GraduatedStudents)
	assert.Equal(t, 1, record.PendingClearanceStudents)
	require.NotNil(t, record.StartedBy)
	assert.Equal(t, "admin", *record.StartedBy)
	assert.Equal(t, []string{models.AuditActionAcademicYearStart}, f.audit.actions())
}

func TestAcademicYearServiceStartNewYearResumesInterruptedPass(t *testing.T) {
	held := activeStudent("held", "cse", "First", "2023-24", "Second", "2024-25")
	held.Status = models.StudentStatusPendingClearance
	graduated := activeStudent("grad", "cse", "First", "2021-22", "Fourth", "2024-25")
	graduated.Status = models.StudentStatusAlumni
	promoted := activeStudent("moved", "cse", "First", "2023-24", "Third", "2025-26")
	remaining := activeStudent("left", "cse", "First", "2023-24", "Second", "2024-25")
	remaining.Year2Points = 100
	earlierAlumni := activeStudent("old", "cse", "First", "2019-20", "Fourth", "2022-23")
	earlierAlumni.Status = models.StudentStatusAlumni

	f := newSchedulerFixture(held, graduated, promoted, remaining, earlierAlumni)
	summary, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, claimsFor(models.RoleAdmin, "admin", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Promoted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, "2025-26", f.students.students["left"].CurrentAcademicYear)
	assert.Equal(t, models.StudentStatusPendingClearance, f.students.students["held"].Status)

	require.Len(t, f.years.records, 2)
	record := f.years.records[1]
	assert.Equal(t, 4, record.TotalStudents)
	assert.Equal(t, 1, record.GraduatedStudents)
	assert.Equal(t, 1, record.PendingClearanceStudents)
}

func TestAcademicYearServiceStartNewYearTwice(t *testing.T) {
	passing := activeStudent("pass", "cse", "First", "2023-24", "Second", "2024-25")
	passing.Year2Points = 100
	f := newSchedulerFixture(passing)
	admin := claimsFor(models.RoleAdmin, "admin", "")

	_, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, admin)
	require.NoError(t, err)
	snapshot := *f.students.students["pass"]

	_, err = f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, admin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrYearAlreadyStarted.Code, appErrors.FromError(err).Code)
	assert.Len(t, f.years.records, 2)
	assert.Equal(t, snapshot, *f.students.students["pass"])
}

func TestAcademicYearServiceStartNewYearValidation(t *testing.T) {
	f := newSchedulerFixture()
	admin := claimsFor(models.RoleAdmin, "admin", "")

	cases := []struct {
		name     string
		year     string
		wantCode string
	}{
		{name: "empty", year: "", wantCode: appErrors.ErrValidation.Code},
		{name: "malformed", year: "2025/26", wantCode: appErrors.ErrValidation.Code},
		{name: "non consecutive", year: "2025-27", wantCode: appErrors.ErrValidation.Code},
		{name: "earlier than active", year: "2023-24", wantCode: appErrors.ErrPreconditionFailed.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: tc.year}, admin)
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, appErrors.FromError(err).Code)
		})
	}
	assert.Len(t, f.years.records, 1)

	_, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, claimsFor(models.RoleHOD, "hod", "cse"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceProgramLength(t *testing.T) {
	fourth := activeStudent("arch-4", "arch", "First", "2021-22", "Fourth", "2024-25")
	fourth.Year4Points = 150
	unknownDept := activeStudent("x-4", "unknown", "First", "2021-22", "Fourth", "2024-25")
	unknownDept.Year4Points = 150
	sixth := activeStudent("med-6", "unknown", "First", "2019-20", "Sixth", "2024-25")
	sixth.Year6Points = 200

	f := newSchedulerFixture(fourth, unknownDept, sixth)
	summary, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, claimsFor(models.RoleSuperAdmin, "root", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Promoted)
	assert.Equal(t, 2, summary.Graduated)
	assert.Equal(t, "Fifth", f.students.students["arch-4"].CurrentYear)
	assert.Equal(t, models.StudentStatusAlumni, f.students.students["x-4"].Status)
	assert.Equal(t, models.StudentStatusAlumni, f.students.students["med-6"].Status)
}

func TestAcademicYearServiceFirstYearWithoutHistory(t *testing.T) {
	f := newSchedulerFixture(activeStudent("new", "cse", "First", "2024-25", "First", "2024-25"))
	f.years.records = nil

	summary, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, claimsFor(models.RoleAdmin, "admin", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HeldBack)
	require.Len(t, f.years.records, 1)
	assert.True(t, f.years.records[0].IsActive)
}

func TestAcademicYearServiceClearStudent(t *testing.T) {
	held := activeStudent("held", "cse", "First", "2023-24", "Second", "2024-25")
	held.Status = models.StudentStatusPendingClearance
	heldFinal := activeStudent("held-final", "cse", "First", "2021-22", "Fourth", "2024-25")
	heldFinal.Status = models.StudentStatusPendingClearance
	f := newSchedulerFixture(held, heldFinal, activeStudent("fine", "cse", "First", "2024-25", "First", "2024-25"))
	admin := claimsFor(models.RoleAdmin, "admin", "")

	cleared, err := f.svc.ClearStudent(context.Background(), "held", admin)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, cleared.Status)
	assert.Equal(t, "Third", cleared.CurrentYear)
	assert.Equal(t, "2024-25", cleared.CurrentAcademicYear)
	assert.Equal(t, "Third", f.students.students["held"].CurrentYear)

	graduated, err := f.svc.ClearStudent(context.Background(), "held-final", admin)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusAlumni, graduated.Status)
	assert.Equal(t, "Fourth", graduated.CurrentYear)

	_, err = f.svc.ClearStudent(context.Background(), "fine", admin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = f.svc.ClearStudent(context.Background(), "held", claimsFor(models.RoleFaculty, "f", "cse"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceHistory(t *testing.T) {
	f := newSchedulerFixture()
	_, err := f.svc.StartNewYear(context.Background(), dto.StartAcademicYearRequest{Year: "2025-26"}, claimsFor(models.RoleAdmin, "admin", ""))
	require.NoError(t, err)

	history, err := f.svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-26", history[0].Label)

	active, err := f.svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-26", active.Label)
}
