package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestMigrateSkipsExistingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	for _, s := range Schema {
		rows := sqlmock.NewRows([]string{"table_name"})
		if s.Table == "cities" {
			rows.AddRow("cities")
		}
		mock.ExpectQuery("information_schema\\.tables").WithArgs(s.Table).WillReturnRows(rows)
		if s.Table != "cities" {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + s.Table).WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}

	created, err := Migrate(context.Background(), conn)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(created) != len(Schema)-1 {
		t.Fatalf("created %v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !IsDuplicateKey(dup) {
		t.Fatalf("1062 should be duplicate")
	}
	if IsDuplicateKey(errors.New("Duplicate entry")) {
		t.Fatalf("plain errors are not duplicates")
	}
	if !IsForeignKeyViolation(&mysql.MySQLError{Number: 1452}) {
		t.Fatalf("1452 should be FK violation")
	}
}
