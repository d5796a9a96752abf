package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errUserDB = errors.New("user db error")

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "first_name", "last_name", "status", "invitation_token",
		"super_admin", "default_organization_id", "created_at", "updated_at",
	})
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func TestCreateUser_AssignsIDAndTimestamps(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "jane@corp.example", FirstName: "Jane", Status: models.UserStatusActive}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected generated id")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errUserDB)

	user := &models.User{Email: "dup@corp.example", Status: models.UserStatusActive}
	if err := repo.CreateUser(context.Background(), user); err == nil {
		t.Error("expected error")
	}
}

// ---------------------------------------------------------------------------
// GetUserByEmail
// ---------------------------------------------------------------------------

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("jane@corp.example").
		WillReturnRows(userRows().AddRow(
			"user-1", "jane@corp.example", "Jane", "Doe", "active", nil,
			false, nil, now, now,
		))

	user, err := repo.GetUserByEmail(context.Background(), "jane@corp.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Fatalf("user = %+v, want user-1", user)
	}
	if user.IsArchived() || user.HasPendingInvitation() {
		t.Error("expected plain active user")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetUserByEmail(context.Background(), "missing@corp.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

// ---------------------------------------------------------------------------
// ClearInvitation
// ---------------------------------------------------------------------------

func TestClearInvitation(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET").
		WithArgs(models.UserStatusActive, sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ClearInvitation(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// ---------------------------------------------------------------------------
// CountUsers
// ---------------------------------------------------------------------------

func TestCountUsers(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

// ---------------------------------------------------------------------------
// Groups
// ---------------------------------------------------------------------------

func TestAddToGroups_OneInsertPerGroup(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO user_groups").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_groups").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.AddToGroups(context.Background(), "user-1", "org-1", []string{models.GroupAllUsers, models.GroupAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestHasGroup(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "org-1", models.GroupAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	admin, err := repo.HasGroup(context.Background(), "user-1", "org-1", models.GroupAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !admin {
		t.Error("expected admin = true")
	}
}

func TestGroupPermissions(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT DISTINCT gp.permission").
		WithArgs("user-1", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"permission"}).AddRow("folder:create").AddRow("workspace:manage"))

	perms, err := repo.GroupPermissions(context.Background(), "user-1", "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(perms) != 2 {
		t.Errorf("permissions = %v, want 2 entries", perms)
	}
}

// ---------------------------------------------------------------------------
// GetUserByID
// ---------------------------------------------------------------------------

func TestGetUserByID_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRows().AddRow(
			"user-1", "jane@corp.example", "Jane", "Doe", models.UserStatusActive,
			nil, false, nil, now, now,
		))

	user, err := repo.GetUserByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.Email != "jane@corp.example" {
		t.Fatalf("user = %+v", user)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("FROM users WHERE id").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetUserByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil, got %+v", user)
	}
}
