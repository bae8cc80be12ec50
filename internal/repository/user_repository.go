package repository

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
)

type UserRepository interface {
	CreateUser(email, password, username, fullName string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	GetUserByID(userID string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, email, username, full_name, avatar_url, password_hash, created_at, updated_at"

func (u *userRepository) CreateUser(email, password, username, fullName string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}

	const query = `
		INSERT INTO users (email, username, full_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var user models.User
	err = u.db.QueryRow(query, email, username, fullName, string(hash)).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, errors.Wrap(err, "insert user")
	}

	return user, nil
}

func (u *userRepository) AuthenticateUser(email, password string) (models.User, error) {
	user, err := u.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, errors.New("invalid credentials")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}

	return user, nil
}

func (u *userRepository) GetUserByID(userID string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return u.scanUser(u.db.QueryRow(query, userID))
}

func (u *userRepository) GetUserByEmail(email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return u.scanUser(u.db.QueryRow(query, strings.TrimSpace(strings.ToLower(email))))
}

func (u *userRepository) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, errors.Wrap(err, "scan user")
	}
	return user, nil
}
