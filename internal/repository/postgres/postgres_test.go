package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/solderinua-oss/solder-warehouse/internal/config"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "warehouse", SSLMode: "disable",
	}
	assert.Equal(t, "host='db' port='5432' user='u' password='p' dbname='warehouse' sslmode='disable'", DSN(cfg))

	cfg.Password = ""
	assert.Contains(t, DSN(cfg), "password='' dbname=")

	cfg.Password = `it's a \secret`
	assert.Contains(t, DSN(cfg), `password='it\'s a \\secret' dbname=`)

	cfg.URL = "postgres://u:p@db/warehouse"
	assert.Equal(t, "postgres://u:p@db/warehouse", DSN(cfg))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "bad conn", err: fmt.Errorf("query: %w", driver.ErrBadConn), unavailable: true},
		{name: "dial", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, unavailable: true},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, unavailable: true},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, unavailable: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, unavailable: false},
		{name: "plain", err: errors.New("syntax error"), unavailable: false},
		{name: "cancelled", err: context.Canceled, unavailable: false},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), unavailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(got, domain.ErrStoreUnavailable))
		})
	}

	assert.NoError(t, classify(nil))
}
