// Package models содержит доменные сущности блог-платформы.
//
// Все идентификаторы — MongoDB ObjectID; наружу (JSON) они отдаются
// 24-символьными hex-строками через primitive.ObjectID.Hex().
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User — учётная запись пользователя.
//
// Важно:
//   - PasswordHash хранит только bcrypt-хэш и никогда не сериализуется в JSON;
//   - RefreshTokenHash — SHA-256 от единственного действующего refresh-токена.
//     Пустая строка означает «активной сессии нет» (logout). Перезапись поля
//     при login/refresh мгновенно инвалидирует предыдущий токен;
//   - IsActive снимается привилегированной операцией; деактивация вступает
//     в силу со следующего запроса, так как middleware перечитывает
//     пользователя на каждый запрос.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password"`
	IsActive         bool               `bson:"is_active"`
	RefreshTokenHash string             `bson:"refresh_token,omitempty"`
	LastLoginAt      time.Time          `bson:"last_login,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

// Principal — аутентифицированная личность, прикреплённая к запросу
// после успешного прохождения auth-middleware.
type Principal struct {
	UserID primitive.ObjectID
	Name   string
	Email  string
}
