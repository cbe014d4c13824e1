package identity

import "time"

// Identity — минимальная запись пользователя. Email ключует персистентность,
// пароля нет: локальная заглушка авторизации, а не безопасность.
type Identity struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
