package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

var testRequirements = ledger.RequirementTable{100, 100, 150, 150, 200, 200}

func TestLedgerServiceProgress(t *testing.T) {
	student := sophomore()
	student.Year1Points = 120
	student.Year2Points = 50
	student.TotalPoints = 170
	svc := NewLedgerService(newStudentStoreStub(student), testRequirements, nil, 0, nil)

	progress, err := svc.Progress(context.Background(), "stu-1", claimsFor(models.RoleFaculty, "f", "cse"))
	require.NoError(t, err)

	assert.Equal(t, "stu-1", progress.Student.ID)
	assert.Equal(t, 170, progress.Overall.TotalPoints)
	assert.Equal(t, 200, progress.Overall.RequiredPoints)
	assert.Equal(t, 85.0, progress.Overall.Percentage)
	require.Len(t, progress.Years, 2)
	assert.Equal(t, 100.0, progress.Years[0].Percentage)
	assert.Equal(t, 50.0, progress.Years[1].Percentage)
	require.NotNil(t, progress.Current)
	assert.Equal(t, ledger.Bucket("year2Points"), progress.Current.Bucket)
	assert.False(t, progress.Current.Met())
}

func TestLedgerServiceProgressAccess(t *testing.T) {
	svc := NewLedgerService(newStudentStoreStub(sophomore()), testRequirements, nil, 0, nil)

	_, err := svc.Progress(context.Background(), "stu-1", claimsFor(models.RoleStudent, "user-stu-1", "cse"))
	require.NoError(t, err)

	_, err = svc.Progress(context.Background(), "stu-1", claimsFor(models.RoleStudent, "someone-else", "cse"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Progress(context.Background(), "stu-1", claimsFor(models.RoleHOD, "h", "ece"))
	require.Error(t, err)

	_, err = svc.Progress(context.Background(), "missing", claimsFor(models.RoleAdmin, "a", ""))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLedgerServiceProgressForUser(t *testing.T) {
	svc := NewLedgerService(newStudentStoreStub(sophomore()), testRequirements, nil, 0, nil)

	progress, err := svc.ProgressForUser(context.Background(), claimsFor(models.RoleStudent, "user-stu-1", "cse"))
	require.NoError(t, err)
	assert.Equal(t, 40, progress.Overall.TotalPoints)

	_, err = svc.ProgressForUser(context.Background(), claimsFor(models.RoleStudent, "nobody", "cse"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLedgerServiceCurrentYearProgress(t *testing.T) {
	svc := NewLedgerService(nil, testRequirements, nil, 0, nil)

	student := sophomore()
	student.CurrentYear = "Third"
	student.Year3Points = 150
	progress, ok := svc.CurrentYearProgress(student)
	require.True(t, ok)
	assert.Equal(t, 150, progress.Required)
	assert.True(t, progress.Met())

	student.CurrentYear = "Tenth"
	_, ok = svc.CurrentYearProgress(student)
	assert.False(t, ok)
}
