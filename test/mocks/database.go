package mocks

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockQuerier implements database.Querier for repository tests
type MockQuerier struct {
	mock.Mock
}

// Query mocks a multi-row query
func (m *MockQuerier) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	callArgs := m.Called(ctx, query, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(pgx.Rows), callArgs.Error(1)
}

// QueryRow mocks a single-row query
func (m *MockQuerier) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	callArgs := m.Called(ctx, query, args)
	return callArgs.Get(0).(pgx.Row)
}

// Exec mocks a statement without rows
func (m *MockQuerier) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	callArgs := m.Called(ctx, query, args)
	return callArgs.Get(0).(pgconn.CommandTag), callArgs.Error(1)
}

// MockRow implements pgx.Row
type MockRow struct {
	values []any
	err    error
}

// NewMockRow returns a row that scans values in order
func NewMockRow(values ...any) *MockRow {
	return &MockRow{values: values}
}

// NewMockRowError returns a row whose Scan fails with err
func NewMockRowError(err error) *MockRow {
	return &MockRow{err: err}
}

// Scan copies the row values into dest
func (r *MockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// MockRows implements pgx.Rows
type MockRows struct {
	data         [][]any
	currentIndex int
	closed       bool
	scanErr      error
	iterErr      error
}

// NewMockRows returns rows over data
func NewMockRows(data [][]any) *MockRows {
	return &MockRows{data: data, currentIndex: -1}
}

// WithScanError makes every Scan fail
func (m *MockRows) WithScanError(err error) *MockRows {
	m.scanErr = err
	return m
}

// WithIterError makes Err report err after iteration
func (m *MockRows) WithIterError(err error) *MockRows {
	m.iterErr = err
	return m
}

// Closed reports whether Close was called
func (m *MockRows) Closed() bool { return m.closed }

func (m *MockRows) Close() { m.closed = true }

func (m *MockRows) Err() error { return m.iterErr }

func (m *MockRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }

func (m *MockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (m *MockRows) Next() bool {
	m.currentIndex++
	return m.currentIndex < len(m.data)
}

func (m *MockRows) Scan(dest ...any) error {
	if m.scanErr != nil {
		return m.scanErr
	}
	if m.currentIndex < 0 || m.currentIndex >= len(m.data) {
		return errors.New("no row to scan")
	}
	return assign(dest, m.data[m.currentIndex])
}

func (m *MockRows) Values() ([]any, error) {
	if m.currentIndex < 0 || m.currentIndex >= len(m.data) {
		return nil, errors.New("no row")
	}
	return m.data[m.currentIndex], nil
}

func (m *MockRows) RawValues() [][]byte { return nil }

func (m *MockRows) Conn() *pgx.Conn { return nil }

func assign(dest []any, row []any) error {
	if len(dest) != len(row) {
		return fmt.Errorf("column count mismatch: %d destinations, %d values", len(dest), len(row))
	}
	for i, v := range row {
		destVal := reflect.ValueOf(dest[i])
		if destVal.Kind() != reflect.Ptr {
			return errors.New("destination must be a pointer")
		}
		target := destVal.Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		srcVal := reflect.ValueOf(v)
		switch {
		case srcVal.Type().AssignableTo(target.Type()):
			target.Set(srcVal)
		case srcVal.Type().ConvertibleTo(target.Type()):
			target.Set(srcVal.Convert(target.Type()))
		default:
			return fmt.Errorf("cannot scan %T into %s", v, target.Type())
		}
	}
	return nil
}
