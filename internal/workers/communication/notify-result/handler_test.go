package notifyresult

import (
	"context"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

// ==========================
// Mocks
// ==========================

type MockResultSource struct {
	mock.Mock
}

func (m *MockResultSource) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TestResult, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestResult), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

// ==========================
// Fixtures
// ==========================

func floatPtr(f float64) *float64 {
	return &f
}

type fixture struct {
	results   *MockResultSource
	email     *MockEmailSender
	publisher *MockEventPublisher
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		results:   new(MockResultSource),
		email:     new(MockEmailSender),
		publisher: new(MockEventPublisher),
	}
	cfg := DefaultConfig()
	cfg.FromAddress = "assessments@example.com"
	cfg.TopicARN = "arn:aws:sns:us-east-1:123456789012:assessment-results"
	f.service = NewService(ServiceDependencies{
		Logger:    logger.NewTestLogger(t),
		Results:   f.results,
		Email:     f.email,
		Publisher: f.publisher,
	}, cfg)
	return f
}

func (f *fixture) expectResult(result *models.TestResult) {
	f.results.On("FindByIDs", mock.Anything, []uuid.UUID{result.ID}).
		Return([]*models.TestResult{result}, nil)
}

func testResult() *models.TestResult {
	return &models.TestResult{
		ID:                uuid.New(),
		SessionID:         uuid.New(),
		TemplateID:        uuid.New(),
		CandidateName:     "Alex Morgan",
		OverallPercentage: floatPtr(82.5),
		Passed:            true,
		CompetencyScores: []models.CompetencyScore{
			{CompetencyID: uuid.New(), Name: "Go", Percentage: 90},
		},
		CompletedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
}

// ==========================
// Delivery
// ==========================

func TestService_SendsEmailAndPublishesEvent(t *testing.T) {
	f := newFixture(t)
	result := testResult()
	f.expectResult(result)

	f.email.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return *in.Source == "assessments@example.com" &&
			len(in.Destination.ToAddresses) == 1 &&
			in.Destination.ToAddresses[0] == "alex@example.com"
	})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("msg-123")}, nil)

	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return *in.TopicArn == "arn:aws:sns:us-east-1:123456789012:assessment-results"
	})).Return(&sns.PublishOutput{}, nil)

	out, err := f.service.Execute(context.Background(), &Input{
		ResultID:  result.ID.String(),
		Recipient: "alex@example.com",
	})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.EmailSent)
	assert.True(t, out.EventPublished)
	assert.Equal(t, "msg-123", out.MessageID)
}

func TestService_EmailOnlyChannelSkipsPublisher(t *testing.T) {
	f := newFixture(t)
	result := testResult()
	f.expectResult(result)

	f.email.On("SendEmail", mock.Anything, mock.Anything).
		Return(&ses.SendEmailOutput{MessageId: awssdk.String("msg-456")}, nil)

	out, err := f.service.Execute(context.Background(), &Input{
		ResultID:  result.ID.String(),
		Recipient: "alex@example.com",
		Channel:   ChannelEmail,
	})

	require.NoError(t, err)
	assert.True(t, out.EmailSent)
	assert.False(t, out.EventPublished)
	f.publisher.AssertNotCalled(t, "Publish")
}

func TestService_EventChannelNeedsNoRecipient(t *testing.T) {
	f := newFixture(t)
	result := testResult()
	f.expectResult(result)

	f.publisher.On("Publish", mock.Anything, mock.Anything).
		Return(&sns.PublishOutput{}, nil)

	out, err := f.service.Execute(context.Background(), &Input{
		ResultID: result.ID.String(),
		Channel:  ChannelEvent,
	})

	require.NoError(t, err)
	assert.False(t, out.EmailSent)
	assert.True(t, out.EventPublished)
	f.email.AssertNotCalled(t, "SendEmail")
}

// ==========================
// Errors
// ==========================

func TestService_InvalidRecipientRejected(t *testing.T) {
	f := newFixture(t)

	for _, recipient := range []string{"", "no-at-sign", "user@", "@domain", "user@nodot"} {
		_, err := f.service.Execute(context.Background(), &Input{
			ResultID:  uuid.New().String(),
			Recipient: recipient,
		})

		require.Error(t, err, "recipient %q", recipient)
		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
	}
	f.results.AssertNotCalled(t, "FindByIDs")
}

func TestService_UnknownChannelRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Execute(context.Background(), &Input{
		ResultID:  uuid.New().String(),
		Recipient: "alex@example.com",
		Channel:   "carrier-pigeon",
	})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
}

func TestService_ResultNotFound(t *testing.T) {
	f := newFixture(t)
	f.results.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]*models.TestResult{}, nil)

	_, err := f.service.Execute(context.Background(), &Input{
		ResultID:  uuid.New().String(),
		Recipient: "alex@example.com",
	})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResultNotFound, stdErr.Code)
}

func TestService_EmailFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	result := testResult()
	f.expectResult(result)

	f.email.On("SendEmail", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	_, err := f.service.Execute(context.Background(), &Input{
		ResultID:  result.ID.String(),
		Recipient: "alex@example.com",
	})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
