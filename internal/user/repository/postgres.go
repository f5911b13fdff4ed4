package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, username, email, password_hash, role, created_at)
        VALUES (:id, :username, :email, :password_hash, :role, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, u)
	return err
}

func (r *PGRepository) findOne(ctx context.Context, query, arg string) (*model.User, error) {
	ext := database.Ext(ctx, r.DB)
	var u model.User
	if err := sqlx.GetContext(ctx, ext, &u, ext.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE username = ?`, username)
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &users, `SELECT * FROM users ORDER BY username`)
	return users, err
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET email = :email, password_hash = :password_hash, role = :role
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, u)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	ext := database.Ext(ctx, r.DB)
	_, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM users WHERE id = ?`), id)
	return err
}

func (r *PGRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	ext := database.Ext(ctx, r.DB)
	var n int
	err := sqlx.GetContext(ctx, ext, &n,
		ext.Rebind(`SELECT count(*) FROM users WHERE LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)`), username, email)
	return n > 0, err
}
