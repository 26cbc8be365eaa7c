package postgres

import (
	"context"
	"errors"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserModel struct {
	DB *pgxpool.Pool
}

func (m *UserModel) collectOne(rows pgx.Rows) (*models.User, error) {
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, mapError(err)
	}
	return &user, nil
}

func (m *UserModel) Insert(ctx context.Context, email, name string, passwordHash []byte) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (email, name, password) VALUES ($1, $2, $3)
		RETURNING id, email, name, password, photo_path`,
		email, name, string(passwordHash),
	)
	return m.collectOne(rows)
}

func (m *UserModel) Get(ctx context.Context, id int64) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT id, email, name, password, photo_path FROM users WHERE id = $1`,
		id,
	)
	return m.collectOne(rows)
}

func (m *UserModel) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT id, email, name, password, photo_path FROM users WHERE email = $1`,
		email,
	)
	return m.collectOne(rows)
}

func (m *UserModel) UpdatePhotoPath(ctx context.Context, id int64, photoPath string) error {
	status, err := m.DB.Exec(ctx, "UPDATE users SET photo_path = $1 WHERE id = $2", photoPath, id)
	if err != nil {
		return mapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
