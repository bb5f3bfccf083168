package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

// codeUniqueViolation — SQLSTATE нарушения уникального индекса.
const codeUniqueViolation = "23505"

// PostgresUsersRepository хранит пользователей в PostgreSQL.
// Идентификатор — UUID, его генерирует приложение.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

func (r *PostgresUsersRepository) Create(ctx context.Context, name, email, password string) (models.InsertResult, error) {
	id := uuid.New()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password)
		 VALUES ($1, $2, $3, $4)`,
		id, name, email, password,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.InsertResult{}, serr.ErrAlreadyExists
		}
		return models.InsertResult{}, serr.Store("insert user", err)
	}

	return models.InsertResult{InsertedID: id.String(), Acknowledged: true}, nil
}

func (r *PostgresUsersRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, serr.InvalidIdentifier(id, err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password FROM users WHERE id=$1`,
		uid,
	)
	return scanUser(row, "get user by id")
}

func (r *PostgresUsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password FROM users WHERE email=$1`,
		email,
	)
	return scanUser(row, "get user by email")
}

func (r *PostgresUsersRepository) Update(ctx context.Context, id, name, email, password string) (models.UpdateResult, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.UpdateResult{}, serr.InvalidIdentifier(id, err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name=$2, email=$3, password=$4 WHERE id=$1`,
		uid, name, email, password,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.UpdateResult{}, serr.ErrAlreadyExists
		}
		return models.UpdateResult{}, serr.Store("update user", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.UpdateResult{}, serr.Store("update user", err)
	}
	// в postgres найденная строка всегда перезаписывается
	return models.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (r *PostgresUsersRepository) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.DeleteResult{}, serr.InvalidIdentifier(id, err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, uid)
	if err != nil {
		return models.DeleteResult{}, serr.Store("delete user", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.DeleteResult{}, serr.Store("delete user", err)
	}
	return models.DeleteResult{DeletedCount: n}, nil
}

func (r *PostgresUsersRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, password FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, serr.Store("list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var (
			id uuid.UUID
			u  models.User
		)
		if err := rows.Scan(&id, &u.Name, &u.Email, &u.Password); err != nil {
			return nil, serr.Store("list users", err)
		}
		u.ID = id.String()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, serr.Store("list users", err)
	}

	return users, nil
}

// scanUser читает одну строку; отсутствие строки — не ошибка.
func scanUser(row *sql.Row, op string) (*models.User, error) {
	var (
		id uuid.UUID
		u  models.User
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, serr.Store(op, err)
	}
	u.ID = id.String()
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
