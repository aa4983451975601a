package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "points", SSLMode: "disable"})
	require.Equal(t, "host=db port=5433 user=u password=p dbname=points sslmode=disable", dsn)
}
