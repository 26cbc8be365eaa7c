package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"
)

type UserModel struct {
	DB *sql.DB
}

const userColumns = `id, email, name, password, photo_path`

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user      models.User
		password  string
		photoPath sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &password, &photoPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = []byte(password)
	if photoPath.Valid {
		user.PhotoPath = &photoPath.String
	}
	return &user, nil
}

func (m *UserModel) Insert(ctx context.Context, email, name string, passwordHash []byte) (*models.User, error) {
	res, err := m.DB.ExecContext(
		ctx,
		`INSERT INTO users (email, name, password) VALUES (?, ?, ?)`,
		email, name, string(passwordHash),
	)
	if err != nil {
		return nil, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Email: email, Name: name, PasswordHash: passwordHash}, nil
}

func (m *UserModel) Get(ctx context.Context, id int64) (*models.User, error) {
	row := m.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (m *UserModel) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := m.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (m *UserModel) UpdatePhotoPath(ctx context.Context, id int64, photoPath string) error {
	res, err := m.DB.ExecContext(ctx, `UPDATE users SET photo_path = ? WHERE id = ?`, photoPath, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
