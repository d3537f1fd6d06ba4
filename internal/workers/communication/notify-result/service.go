package notifyresult

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelEvent = "event"
	ChannelAll   = "all"
)

type Service struct {
	config    *Config
	logger    logger.Logger
	results   ResultSource
	email     EmailSender
	publisher EventPublisher
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		results:   deps.Results,
		email:     deps.Email,
		publisher: deps.Publisher,
	}
}

// Execute notifies a candidate of their completed result by email and
// publishes a completion event for downstream consumers. Channel selects
// which of the two run; default is both.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	resultID, err := uuid.Parse(input.ResultID)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("malformed resultId %q", input.ResultID))
	}

	channel := strings.ToLower(strings.TrimSpace(input.Channel))
	if channel == "" {
		channel = ChannelAll
	}
	if channel != ChannelEmail && channel != ChannelEvent && channel != ChannelAll {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown channel %q", input.Channel))
	}
	if (channel == ChannelEmail || channel == ChannelAll) && !isValidEmail(input.Recipient) {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("invalid recipient address %q", input.Recipient))
	}

	found, err := s.results.FindByIDs(ctx, []uuid.UUID{resultID})
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("result", err)
	}
	if len(found) == 0 {
		return nil, errors.NewResultNotFoundError([]string{resultID.String()})
	}
	result := found[0]

	output := &Output{
		ResultID: resultID.String(),
		SentAt:   time.Now().UTC(),
	}

	if channel == ChannelEmail || channel == ChannelAll {
		messageID, err := s.sendEmail(ctx, input.Recipient, result)
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		output.EmailSent = true
		output.MessageID = messageID
	}

	if channel == ChannelEvent || channel == ChannelAll {
		if err := s.publishEvent(ctx, result, input.Metadata); err != nil {
			return nil, errors.NewNotificationSendFailedError("event", err)
		}
		output.EventPublished = true
	}

	output.Success = true
	s.logger.Info("result notification delivered", map[string]interface{}{
		"resultId":       resultID.String(),
		"channel":        channel,
		"emailSent":      output.EmailSent,
		"eventPublished": output.EventPublished,
	})
	return output, nil
}

func (s *Service) sendEmail(ctx context.Context, recipient string, result *models.TestResult) (string, error) {
	subject := fmt.Sprintf("Your assessment result: %s", passLabel(result.Passed))
	body := buildEmailBody(result)

	out, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(s.config.FromAddress),
		Destination: &sestypes.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if out.MessageId != nil {
		return *out.MessageId, nil
	}
	return "", nil
}

func (s *Service) publishEvent(ctx context.Context, result *models.TestResult, metadata map[string]interface{}) error {
	if s.config.TopicARN == "" {
		s.logger.Warn("no topic configured, skipping result event", map[string]interface{}{
			"resultId": result.ID.String(),
		})
		return nil
	}

	event := map[string]interface{}{
		"eventType":   "assessment.result.completed",
		"resultId":    result.ID.String(),
		"sessionId":   result.SessionID.String(),
		"templateId":  result.TemplateID.String(),
		"passed":      result.Passed,
		"completedAt": result.CompletedAt.UTC().Format(time.RFC3339),
	}
	if result.OverallPercentage != nil {
		event["overallPercentage"] = *result.OverallPercentage
	}
	for k, v := range metadata {
		event[k] = v
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.config.TopicARN),
		Message:  awssdk.String(string(payload)),
	})
	return err
}

func buildEmailBody(result *models.TestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", result.CandidateName)
	fmt.Fprintf(&b, "Your assessment completed on %s.\r\n", result.CompletedAt.Format("January 2, 2006"))
	if result.OverallPercentage != nil {
		fmt.Fprintf(&b, "Overall score: %.1f%% (%s)\r\n", *result.OverallPercentage, passLabel(result.Passed))
	} else {
		fmt.Fprintf(&b, "Result: %s\r\n", passLabel(result.Passed))
	}
	if len(result.CompetencyScores) > 0 {
		b.WriteString("\r\nCompetency breakdown:\r\n")
		for _, score := range result.CompetencyScores {
			fmt.Fprintf(&b, "  - %s: %.1f%%\r\n", score.Name, score.Percentage)
		}
	}
	b.WriteString("\r\nThank you for participating.\r\n")
	return b.String()
}

func passLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "not passed"
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}
