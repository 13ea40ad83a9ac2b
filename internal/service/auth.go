package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
	"github.com/pribylovaa/go-blog-platform/pkg/log"
	"github.com/pribylovaa/go-blog-platform/pkg/redact"
)

// SignupInput — данные регистрации.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// UpdateProfileInput — частичное обновление профиля: nil-поле не трогается.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// Signup регистрирует нового пользователя и выдаёт пару токенов.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, *models.TokenPair, error) {
	const op = "service.auth.Signup"

	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, nil, fmt.Errorf("%s: name length: %w", op, ErrInvalidArgument)
	}

	normEmail, err := validateEmail(in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password != in.ConfirmPassword {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Name:         name,
		Email:        normEmail,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("op", op),
		slog.String("user_id", user.ID.Hex()),
		slog.String("email", redact.Email(normEmail)),
	)

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, pair, nil
}

// Login выполняет вход по email+пароль.
// Деактивированная учётка отклоняется до проверки пароля и токенов не получает.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	const op = "service.auth.Login"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		log.From(ctx).Warn("login_inactive_account",
			slog.String("op", op),
			slog.String("user_id", user.ID.Hex()),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrUserInactive)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	now := time.Now().UTC()
	if err := s.storage.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Не фатально для входа: фиксируем и продолжаем.
		log.From(ctx).Warn("touch_last_login_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	} else {
		user.LastLoginAt = now
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, pair, nil
}

// Logout очищает единственный хранимый refresh-токен пользователя:
// после этого verifyRefresh обречён на несовпадение.
func (s *Service) Logout(ctx context.Context, userID primitive.ObjectID) error {
	const op = "service.auth.Logout"

	if err := s.storage.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if s.rcache != nil {
		if cerr := s.rcache.Del(ctx, userID.Hex()); cerr != nil {
			log.From(ctx).Warn("refresh_cache_del_failed",
				slog.String("op", op),
				slog.String("err", cerr.Error()),
			)
		}
	}

	return nil
}

// Rotate обновляет пару токенов по refresh-токену (ротация).
// Старый refresh-токен становится недействительным сразу же: issueTokenPair
// перезаписывает хранимый хэш. Пользователь отсутствует или деактивирован —
// Unauthenticated, как и при любой другой проблеме с токеном.
func (s *Service) Rotate(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.Rotate"

	user, err := s.validateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Authenticate разрешает access-токен в аутентифицированного принципала.
//
// Машина состояний запроса:
//   - токена нет/подпись бита/истёк -> ErrInvalidToken/ErrTokenExpired (401);
//   - токен валиден, пользователя нет -> ErrInvalidToken (401);
//   - пользователь деактивирован -> ErrUserInactive (403);
//   - активен -> Principal.
//
// Пользователь перечитывается на каждый запрос — деактивация вступает
// в силу со следующего же запроса, несмотря на криптографически
// валидный access-токен.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.Principal, error) {
	const op = "service.auth.Authenticate"

	uid, _, err := s.validateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrUserInactive)
	}

	return &models.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}, nil
}

// Profile возвращает профиль пользователя.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	const op = "service.auth.Profile"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile обновляет имя и/или e-mail пользователя.
// Занятый другим пользователем e-mail — ErrEmailTaken; гонка между
// проверкой и записью схлопывается уникальным индексом хранилища.
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.User, error) {
	const op = "service.auth.UpdateProfile"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := user.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
			return nil, fmt.Errorf("%s: name length: %w", op, ErrInvalidArgument)
		}
	}

	email := user.Email
	if in.Email != nil {
		email, err = validateEmail(*in.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}

		if email != user.Email {
			other, lerr := s.storage.UserByEmail(ctx, email)
			if lerr == nil && other.ID != userID {
				return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
			}
			if lerr != nil && !errors.Is(lerr, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, lerr)
			}
		}
	}

	updated, err := s.storage.UpdateUserProfile(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет длину пароля (6–50 символов).
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if n := utf8.RuneCountInString(pw); n < 6 || n > 50 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
