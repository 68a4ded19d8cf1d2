package entities

import "time"

// Partner - клиент (контакт). Создается либо менеджером, либо автоматически
// при первом обращении из Telegram.
type Partner struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	IsCompany bool      `json:"is_company"`
	CreatedAt time.Time `json:"created_at"`
}
