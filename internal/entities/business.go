package entities

import "time"

type Business struct {
	ID          string    `json:"id"`
	OwnerUserID int       `json:"owner_user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhoneNumber string    `json:"phone_number"` // provisioned Twilio number, E.164
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
