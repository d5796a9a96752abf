package repositories

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newSettingsRepo(t *testing.T) (*InstanceSettingsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewInstanceSettingsRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestGetSetting_Present(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectQuery("SELECT value FROM instance_settings").
		WithArgs(SettingAllowPersonalWorkspace).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("true"))

	value, err := repo.GetSetting(context.Background(), SettingAllowPersonalWorkspace)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "true" {
		t.Errorf("value = %q, want true", value)
	}
}

func TestGetSetting_AbsentReturnsEmpty(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectQuery("SELECT value FROM instance_settings").
		WillReturnError(sql.ErrNoRows)

	value, err := repo.GetSetting(context.Background(), "MISSING")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "" {
		t.Errorf("value = %q, want empty", value)
	}
}

func TestSetSetting(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectExec("INSERT INTO instance_settings").
		WithArgs(SettingAllowPersonalWorkspace, "false", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetSetting(context.Background(), SettingAllowPersonalWorkspace, "false"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
