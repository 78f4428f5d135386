package models

import (
	"time"

	"github.com/google/uuid"
)

// Estimate описывает заявку на услугу или ответное предложение исполнителя.
// Корневая запись (ParentID == nil) создаётся владельцем питомца; предложение
// исполнителя ссылается на корень через ParentID.
type Estimate struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ParentID     *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	ProviderID   *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	PetID        uuid.UUID  `db:"pet_id" json:"pet_id"`
	ServiceType  string     `db:"service_type" json:"service_type"`
	Proposal     string     `db:"proposal" json:"proposal"`
	Status       string     `db:"status" json:"status"`
	Address      string     `db:"address" json:"address"`
	ReservedDate time.Time  `db:"reserved_date" json:"reserved_date"`
	Symptoms     *string    `db:"symptoms" json:"symptoms,omitempty"`
	Requirements *string    `db:"requirements" json:"requirements,omitempty"`
	Diagnosis    *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Cause        *string    `db:"cause" json:"cause,omitempty"`
	Treatment    *string    `db:"treatment" json:"treatment,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsRoot сообщает, является ли запись корневой заявкой.
func (e *Estimate) IsRoot() bool {
	return e.ParentID == nil
}

// IsTerminal сообщает, находится ли запись в терминальном статусе.
func (e *Estimate) IsTerminal() bool {
	return IsTerminalEstimateStatus(e.Status)
}
