package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Digitalmustiii/novaauthentication/internal/data/pgxutil"
	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	apperrors "github.com/Digitalmustiii/novaauthentication/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id::text AS id, name, email, password_hash, created_at, updated_at`

const (
	userInsertQuery = `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING ` + userColumns

	userGetByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	userGetByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1::uuid`
)

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// CreateUser inserts a new user. A duplicate email is reported as a conflict on "email".
func (r *UserRepo) CreateUser(ctx context.Context, in domainauth.NewUser) (*domainauth.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.PasswordHash == "" {
		return nil, apperrors.Validation("name, email and password hash are required")
	}

	now := r.timeProvider.Now().UTC()
	var out domainauth.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, userInsertQuery, name, email, in.PasswordHash, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.User])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// FindUserByEmail retrieves a user by exact email.
func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (*domainauth.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NotFound("user not found")
	}
	return r.getByQuery(ctx, userGetByEmailQuery, email)
}

// FindUserByID retrieves a user by ID. An ID that is not a UUID cannot exist.
func (r *UserRepo) FindUserByID(ctx context.Context, id string) (*domainauth.User, error) {
	if uuid.Validate(id) != nil {
		return nil, apperrors.NotFound("user not found")
	}
	return r.getByQuery(ctx, userGetByIDQuery, id)
}

func (r *UserRepo) getByQuery(ctx context.Context, query string, arg any) (*domainauth.User, error) {
	var out domainauth.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.User])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
