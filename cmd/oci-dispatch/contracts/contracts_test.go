package contracts

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/models"
	"github.com/crucial707/oci-dispatch/internal/repo"
)

func TestRenderTable(t *testing.T) {
	list := []models.Contract{{
		ID:            7,
		ContractStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ContractEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("125000.5"),
	}}

	var buf bytes.Buffer
	renderTable(&buf, list)
	out := buf.String()
	for _, want := range []string{"2025-01-01", "2025-12-31", "125000.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestActiveOn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "contract_start", "contract_end", "amount", "created_at"}).
		AddRow(1, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "1000.00", time.Now())
	mock.ExpectQuery("FROM contracts").WithArgs("2025-07-17").WillReturnRows(rows)

	day, _ := dates.Parse("2025-07-17")
	list, err := activeOn(context.Background(), repo.NewContractRepo(db), day)
	if err != nil {
		t.Fatalf("activeOn: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected contracts: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestActive_MalformedDate(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"active", "07/17/2025"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
