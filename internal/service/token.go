package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
	"github.com/pribylovaa/go-blog-platform/pkg/log"
)

// accessClaims — полезная нагрузка access-токена: {userId, email}.
type accessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// refreshClaims — полезная нагрузка refresh-токена: {userId} плюс
// уникальный jti на каждый выпуск.
type refreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// generateAccessToken генерирует короткоживущий access-токен,
// подписанный access-секретом.
func (s *Service) generateAccessToken(ctx context.Context, userID primitive.ObjectID, email string, now time.Time) (string, error) {
	const op = "service.token.generateAccessToken"

	claims := accessClaims{
		UserID: userID.Hex(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   userID.Hex(),
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		log.From(ctx).Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// generateRefreshToken генерирует долгоживущий refresh-токен,
// подписанный отдельным refresh-секретом. jti (uuid) делает каждый
// выпуск уникальным: iat имеет секундную точность, и без jti две
// ротации в одну секунду дали бы побайтово одинаковые токены —
// «старый» токен оставался бы действительным после ротации.
func (s *Service) generateRefreshToken(ctx context.Context, userID primitive.ObjectID, now time.Time) (string, error) {
	const op = "service.token.generateRefreshToken"

	claims := refreshClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   userID.Hex(),
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		log.From(ctx).Error("refresh_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// validateAccessToken валидирует access-токен.
func (s *Service) validateAccessToken(tokenStr string) (primitive.ObjectID, string, error) {
	const op = "service.token.validateAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.AccessSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return primitive.NilObjectID, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, claims.Email, nil
}

// validateRefreshToken валидирует refresh-токен: подпись и срок — по
// refresh-секрету, затем точное совпадение с единственным хранимым
// значением пользователя. Одна проверка закрывает и logout-инвалидацию,
// и вытеснение при ротации.
func (s *Service) validateRefreshToken(ctx context.Context, tokenStr string) (*models.User, error) {
	const op = "service.token.validateRefreshToken"

	lg := log.From(ctx)

	token, err := jwt.ParseWithClaims(tokenStr, &refreshClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.RefreshSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*refreshClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	hash := hashToken(tokenStr)

	// Кэш не участвует в решении: источник истины — хранилище, а запись
	// может отставать (write-through с warn при сбое Set). Несовпадение
	// трактуется как промах; устаревший ключ вычищается.
	if s.rcache != nil {
		cached, found, cerr := s.rcache.Get(ctx, uid.Hex())
		switch {
		case cerr != nil:
			lg.Warn("refresh_cache_get_failed",
				slog.String("op", op),
				slog.String("err", cerr.Error()),
			)
		case found && cached != hash:
			lg.Warn("refresh_cache_stale",
				slog.String("op", op),
				slog.String("user_id", uid.Hex()),
			)
			if derr := s.rcache.Del(ctx, uid.Hex()); derr != nil {
				lg.Warn("refresh_cache_del_failed",
					slog.String("op", op),
					slog.String("err", derr.Error()),
				)
			}
		}
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_user_missing",
				slog.String("op", op),
				slog.String("user_id", uid.Hex()),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("refresh_user_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenHash != hash {
		lg.Warn("refresh_mismatch",
			slog.String("op", op),
			slog.String("user_id", uid.Hex()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return user, nil
}

// issueTokenPair выпускает новую пару access+refresh токенов и
// перезаписывает хранимый хэш refresh-токена: предыдущий токен
// становится недействительным немедленно.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, user.ID, user.Email, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash := hashToken(refreshToken)

	if err := s.storage.SetRefreshTokenHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.rcache != nil {
		if cerr := s.rcache.Set(ctx, user.ID.Hex(), hash, s.cfg.RefreshTokenTTL); cerr != nil {
			log.From(ctx).Warn("refresh_cache_set_failed",
				slog.String("op", op),
				slog.String("err", cerr.Error()),
			)
			// Запись не обновилась — убираем ключ, чтобы в кэше не остался
			// хэш вытесненного токена.
			if derr := s.rcache.Del(ctx, user.ID.Hex()); derr != nil {
				log.From(ctx).Warn("refresh_cache_del_failed",
					slog.String("op", op),
					slog.String("err", derr.Error()),
				)
			}
		}
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// hashToken возвращает SHA-256 от токена в base64: в БД хранится только
// хэш, сырой refresh-токен существует лишь у клиента.
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
