// service содержит бизнес-логику блог-платформы: регистрацию и
// аутентификацию пользователей, выпуск/проверку/ротацию токенов,
// авторизацию мутаций контента и операции над блогами и комментариями.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования из разных горутин при условии, что
//     переданное хранилище (storage.Storage) потокобезопасно.
//   - Авторизация «мутировать может только автор» перепроверяется на
//     каждый вызов по свежезагруженной сущности и нигде не кэшируется.
//   - Ошибки возвращаются типизированными и далее маппятся HTTP-слоем
//     на статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-blog-platform/internal/cache"
	"github.com/pribylovaa/go-blog-platform/internal/config"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

var (
	// ErrInvalidArgument — вход не прошёл валидацию. HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPasswordMismatch — password и confirmPassword не совпадают. HTTP 400.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль вне допустимой длины (6–50). HTTP 400.
	ErrWeakPassword = errors.New("password must be 6-50 characters")

	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь
	// не найден. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh) некорректен по подписи,
	// либо refresh не совпадает с единственным хранимым значением
	// (logout или ротация уже инвалидировали его). HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUserInactive — учётная запись деактивирована. HTTP 403.
	ErrUserInactive = errors.New("account is deactivated")

	// ErrForbidden — аутентифицированный пользователь не является автором
	// сущности, которую пытается изменить. HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound — сущность отсутствует. HTTP 404.
	ErrNotFound = errors.New("not found")
)

// Service описывает бизнес-логику блог-платформы.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	rcache  cache.RefreshCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// SetRefreshCache устанавливает кэш refresh-токенов (опционально).
func (s *Service) SetRefreshCache(c cache.RefreshCache) {
	s.rcache = c
}
