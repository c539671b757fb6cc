package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"lusolingo/internal/models"
)

// ReportService emails weekly progress summaries via Amazon SES. When no
// sender address is configured the service runs disabled and every send is
// a logged no-op, so local setups need no AWS credentials.
type ReportService struct {
	client    *sesv2.Client
	fromEmail string
	enabled   bool
}

// NewReportService creates a report mailer. An empty fromEmail disables it.
func NewReportService(awsRegion, fromEmail string) (*ReportService, error) {
	if fromEmail == "" {
		log.Println("Report email disabled: REPORT_FROM_EMAIL not configured")
		return &ReportService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Report email enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &ReportService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether report sending is configured.
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendProgressReport emails the learner their current progress summary.
func (s *ReportService) SendProgressReport(ctx context.Context, user *models.User, overview *ProgressOverview, hints []models.Hint) error {
	if !s.enabled {
		log.Printf("Skipping report send (service disabled): progress report to %s", user.Email)
		return nil
	}

	subject := "Your Portuguese progress this week"
	htmlBody := buildReportHTML(user.Name, overview, hints)
	textBody := buildReportText(user.Name, overview, hints)

	return s.send(ctx, user.Email, subject, htmlBody, textBody)
}

func buildReportHTML(name string, overview *ProgressOverview, hints []models.Hint) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h1>Olá, %s!</h1>
	<p>You have earned <strong>%d XP</strong> so far.</p>
	<p>Lessons finished: <strong>%d of %d</strong> (%d%%).</p>
	<p>Building blocks: <strong>%d of %d</strong> complete.</p>
`, name, overview.TotalXP,
		overview.Stats.Total.Completed, overview.Stats.Total.Total, overview.Stats.Total.Percentage,
		overview.BuildingBlocks.Completed, overview.BuildingBlocks.Total)

	if overview.NextLesson != nil {
		fmt.Fprintf(&b, "\t<p>Up next: <strong>%s</strong>.</p>\n", overview.NextLesson.Title)
	}
	if len(hints) > 0 {
		b.WriteString("\t<h2>Study tips</h2>\n\t<ul>\n")
		for _, hint := range hints {
			if hint.Word != nil {
				fmt.Fprintf(&b, "\t\t<li><strong>%s</strong>: %s</li>\n", hint.Word.PT, hint.Tip)
			} else {
				fmt.Fprintf(&b, "\t\t<li>%s</li>\n", hint.Tip)
			}
		}
		b.WriteString("\t</ul>\n")
	}

	b.WriteString("\t<p style=\"font-size: 12px; color: #666;\">This is an automated email. Please do not reply.</p>\n</body>\n</html>\n")
	return b.String()
}

func buildReportText(name string, overview *ProgressOverview, hints []models.Hint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\n\n", name)
	fmt.Fprintf(&b, "You have earned %d XP so far.\n", overview.TotalXP)
	fmt.Fprintf(&b, "Lessons finished: %d of %d (%d%%).\n",
		overview.Stats.Total.Completed, overview.Stats.Total.Total, overview.Stats.Total.Percentage)
	fmt.Fprintf(&b, "Building blocks: %d of %d complete.\n",
		overview.BuildingBlocks.Completed, overview.BuildingBlocks.Total)

	if overview.NextLesson != nil {
		fmt.Fprintf(&b, "Up next: %s.\n", overview.NextLesson.Title)
	}
	if len(hints) > 0 {
		b.WriteString("\nStudy tips:\n")
		for _, hint := range hints {
			if hint.Word != nil {
				fmt.Fprintf(&b, "- %s: %s\n", hint.Word.PT, hint.Tip)
			} else {
				fmt.Fprintf(&b, "- %s\n", hint.Tip)
			}
		}
	}

	b.WriteString("\n---\nThis is an automated email. Please do not reply.\n")
	return b.String()
}

// send delivers one email through SES.
func (s *ReportService) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data: aws.String(htmlBody),
					},
					Text: &types.Content{
						Data: aws.String(textBody),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Sent progress report to %s", toEmail)
	return nil
}
