package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestUserQueriesSelectAllScannedColumns(t *testing.T) {
	columns := strings.Split(userColumns, ",")
	if len(columns) != 9 {
		t.Fatalf("scanUser reads 9 columns, userColumns lists %d", len(columns))
	}

	for _, query := range []string{getUserByUsernameQuery, getUserByIDQuery, insertUserQuery} {
		if !strings.Contains(query, userColumns) {
			t.Fatalf("query does not select the user columns: %s", query)
		}
	}
}

func TestRoleQueriesAreScopedToUser(t *testing.T) {
	for _, query := range []string{getUserRolesQuery, deleteUserRolesQuery} {
		if !strings.Contains(strings.ToLower(query), "user_id = $1") {
			t.Fatalf("expected query scoped by user id: %s", query)
		}
	}
	if !strings.Contains(insertUserRolesQuery, "name = ANY($2)") {
		t.Fatal("role assignment must only insert named roles")
	}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestScanUserMapsErrors(t *testing.T) {
	if _, err := scanUser(errRow{err: pgx.ErrNoRows}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := scanUser(errRow{err: &pgconn.PgError{Code: uniqueViolation}}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	other := errors.New("conn closed")
	if _, err := scanUser(errRow{err: other}); !errors.Is(err, other) {
		t.Fatalf("expected passthrough, got %v", err)
	}
}

func TestUniqueStrings(t *testing.T) {
	got := uniqueStrings([]string{"dokter", "staf", "dokter"})
	if strings.Join(got, ",") != "dokter,staf" {
		t.Fatalf("unexpected %v", got)
	}
}
