package handlers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

// flakyMetricsDriver answers the is_admin lookup and fails every other
// query, standing in for a database that drops out mid-request.
type flakyMetricsDriver struct{}

func (flakyMetricsDriver) Open(string) (driver.Conn, error) { return flakyMetricsConn{}, nil }

type flakyMetricsConn struct{}

func (flakyMetricsConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (flakyMetricsConn) Close() error              { return nil }
func (flakyMetricsConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (flakyMetricsConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if strings.Contains(query, "is_admin") {
		return &singleBoolRows{column: "is_admin", value: true}, nil
	}
	return nil, errors.New("connection lost")
}

type singleBoolRows struct {
	column string
	value  bool
	done   bool
}

func (r *singleBoolRows) Columns() []string { return []string{r.column} }
func (r *singleBoolRows) Close() error      { return nil }
func (r *singleBoolRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.value
	return nil
}

func init() { sql.Register("flakymetrics", flakyMetricsDriver{}) }

func TestAdminOverviewSurfacesQueryFailure(t *testing.T) {
	raw, err := sql.Open("flakymetrics", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db := sqlx.NewDb(raw, "pgx")
	handler := NewAdminHandler(db)

	rec := httptest.NewRecorder()
	handler.Overview(rec, authedRequest(http.MethodGet, "/api/admin/overview", "", nil))

	// A metrics query failure must not degrade to a 200 full of zeroes.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %q", rec.Code, rec.Body.String())
	}
}
