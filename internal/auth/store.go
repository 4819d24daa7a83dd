package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email is already registered")
	ErrSessionNotFound = errors.New("session not found")
)

// Store is the credential and session store behind the auth handlers.
// FindSessionByID and FindRoleByUserID satisfy the session and role
// middleware fetchers.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	InsertUser(ctx context.Context, email, name, passwordHash, role string) (*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	CreateSession(ctx context.Context, userID string, expiresAt time.Time) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	FindSessionByID(id string) (utils.SessionData, error)
	FindRoleByUserID(id string) (string, error)
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

// InsertUser creates a user. A duplicate email yields ErrEmailTaken.
func (s *GormStore) InsertUser(ctx context.Context, email, name, passwordHash, role string) (*User, error) {
	u := User{
		UserID:         utils.GenerateUUID(),
		Email:          NormalizeEmail(email),
		Name:           strings.TrimSpace(name),
		HashedPassword: passwordHash,
		Role:           role,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("user_id = ?", userID).
		Update("hashed_password", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateSession issues a new session ID for userID. Each user holds at most
// one session, so logging in again replaces the previous one.
func (s *GormStore) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	sess := Session{
		SessionID: utils.GenerateUUID(),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_id", "expires_at"}),
	}).Create(&sess).Error
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sess.SessionID, nil
}

func (s *GormStore) DeleteSession(ctx context.Context, sessionID string) error {
	res := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&Session{})
	if res.Error != nil {
		return fmt.Errorf("delete session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *GormStore) FindSessionByID(id string) (utils.SessionData, error) {
	var session Session

	err := s.db.First(&session, "session_id = ?", id).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *GormStore) FindRoleByUserID(id string) (string, error) {
	var u User
	if err := s.db.Select("role").First(&u, "user_id = ?", id).Error; err != nil {
		return "", err
	}
	return u.Role, nil
}

// PurgeExpired deletes sessions that expired before now and reports how
// many were removed.
func (s *GormStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
