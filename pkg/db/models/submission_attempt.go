package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/customorder-backend/pkg/enums"
)

// SubmissionAttempt is one audited submit. Contact details and the payload
// are never stored.
type SubmissionAttempt struct {
	ID              uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       string                  `gorm:"type:text;not null" json:"sessionId"`
	Outcome         enums.SubmissionOutcome `gorm:"type:text;not null" json:"outcome"`
	ErrorCode       *string                 `gorm:"type:text" json:"errorCode,omitempty"`
	ProductCount    int                     `gorm:"not null" json:"productCount"`
	Quantity        int64                   `gorm:"not null" json:"quantity"`
	Quote           bool                    `gorm:"not null" json:"quote"`
	EstimatedTotal  *decimal.Decimal        `gorm:"type:numeric(12,2)" json:"estimatedTotal,omitempty"`
	UploadAttempted bool                    `gorm:"not null" json:"uploadAttempted"`
	UploadSucceeded bool                    `gorm:"not null" json:"uploadSucceeded"`
	StorageProvider *enums.StorageProvider  `gorm:"type:text" json:"storageProvider,omitempty"`
	DurationMS      int64                   `gorm:"column:duration_ms;not null" json:"durationMs"`
	SubmittedAt     time.Time               `gorm:"not null" json:"submittedAt"`
	CreatedAt       time.Time               `gorm:"autoCreateTime" json:"createdAt"`
}

func (SubmissionAttempt) TableName() string {
	return "submission_attempts"
}
