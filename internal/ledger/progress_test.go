package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTable = RequirementTable{100, 100, 150, 150, 200, 200}

func thirdYearAccount() Account {
	return Account{
		JoinYear:            "Second",
		JoinAcademicYear:    "2023-24",
		CurrentYear:         "Third",
		CurrentAcademicYear: "2024-25",
		Points:              BucketPoints{40, 120, 30, 0, 0, 0},
	}
}

func TestTotalPointsIgnoresBucketsOutsideTenure(t *testing.T) {
	account := thirdYearAccount()
	assert.Equal(t, 150, TotalPoints(account))
	assert.NoError(t, CheckTotal(account, 150))
	assert.Error(t, CheckTotal(account, 190))
}

func TestYearProgress(t *testing.T) {
	account := thirdYearAccount()

	second := YearProgress(account, "year2Points", testTable)
	assert.Equal(t, 120, second.Points)
	assert.Equal(t, 100, second.Required)
	assert.Equal(t, float64(100), second.Percentage)
	assert.True(t, second.Met())

	third := YearProgress(account, "year3Points", testTable)
	assert.Equal(t, 30, third.Points)
	assert.Equal(t, 150, third.Required)
	assert.Equal(t, float64(20), third.Percentage)
	assert.False(t, third.Met())
	assert.Equal(t, "Third Year", third.DisplayName)
	assert.Equal(t, 3, third.Order)
}

func TestYearProgressRoundsAndHandlesZeroRequirement(t *testing.T) {
	account := Account{
		JoinYear: "First", JoinAcademicYear: "2024-25",
		CurrentYear: "First", CurrentAcademicYear: "2024-25",
		Points: BucketPoints{1},
	}
	progress := YearProgress(account, "year1Points", RequirementTable{3})
	assert.Equal(t, 33.33, progress.Percentage)

	free := YearProgress(account, "year1Points", RequirementTable{})
	assert.Equal(t, float64(100), free.Percentage)
	assert.True(t, free.Met())
}

func TestOverallProgress(t *testing.T) {
	overall := OverallProgress(thirdYearAccount(), testTable)
	assert.Equal(t, 150, overall.TotalPoints)
	assert.Equal(t, 250, overall.RequiredPoints)
	assert.Equal(t, float64(60), overall.Percentage)

	years := YearsProgress(thirdYearAccount(), testTable)
	require.Len(t, years, 2)
	assert.Equal(t, Bucket("year2Points"), years[0].Bucket)
	assert.Equal(t, Bucket("year3Points"), years[1].Bucket)
}

func TestOverallProgressInvalidAccount(t *testing.T) {
	overall := OverallProgress(Account{JoinYear: "Second"}, testTable)
	assert.Zero(t, overall.TotalPoints)
	assert.Zero(t, overall.RequiredPoints)
	assert.Equal(t, float64(100), overall.Percentage)
}

func TestCreditBucket(t *testing.T) {
	account := thirdYearAccount()

	bucket, err := CreditBucket(account, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, Bucket("year3Points"), bucket)

	bucket, err = CreditBucket(account, "2023-24")
	require.NoError(t, err)
	assert.Equal(t, Bucket("year2Points"), bucket)

	_, err = CreditBucket(account, "2022-23")
	require.ErrorIs(t, err, ErrNoBucket)

	_, err = CreditBucket(account, "garbage")
	require.ErrorIs(t, err, ErrNoBucket)
}

func TestCreditBucketRejectsYearBeforeJoin(t *testing.T) {
	account := Account{
		JoinYear:            "Second",
		JoinAcademicYear:    "2025-26",
		CurrentYear:         "Second",
		CurrentAcademicYear: "2025-26",
	}

	_, err := CreditBucket(account, "2024-25")
	require.ErrorIs(t, err, ErrNoBucket)
	assert.NoError(t, CheckTotal(account, 0))

	bucket, err := CreditBucket(account, "2025-26")
	require.NoError(t, err)
	assert.Equal(t, Bucket("year2Points"), bucket)
}

func TestCreditBucketClampsHeldBackStudent(t *testing.T) {
	account := Account{
		JoinYear:            "First",
		JoinAcademicYear:    "2023-24",
		CurrentYear:         "First",
		CurrentAcademicYear: "2023-24",
	}

	bucket, err := CreditBucket(account, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, Bucket("year1Points"), bucket)

	account.Points[0] += 10
	assert.NoError(t, CheckTotal(account, 10))
}
