package notifyresult

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

type Input struct {
	ResultID  string                 `json:"resultId"`
	Recipient string                 `json:"recipient"`
	Channel   string                 `json:"channel,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	Success        bool      `json:"success"`
	ResultID       string    `json:"resultId"`
	EmailSent      bool      `json:"emailSent"`
	EventPublished bool      `json:"eventPublished"`
	MessageID      string    `json:"messageId,omitempty"`
	SentAt         time.Time `json:"sentAt"`
}

// ResultSource resolves completed test results.
type ResultSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TestResult, error)
}

// EmailSender is satisfied by the SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// EventPublisher is satisfied by the SNS client wrapper.
type EventPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type ServiceDependencies struct {
	Logger    logger.Logger
	Results   ResultSource
	Email     EmailSender
	Publisher EventPublisher
}
