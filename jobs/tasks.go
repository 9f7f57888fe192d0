package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fintrack/fintrack/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDailyReminder triggers the 22:00 log-your-day reminder run.
	TaskTypeDailyReminder = "notify:reminder"
	// TaskTypeDailySummary triggers the 23:00 expense summary run.
	TaskTypeDailySummary = "notify:summary"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewDailyReminderTask constructs the reminder trigger task.
func NewDailyReminderTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDailyReminder, nil, asynq.Queue(QueueDefault))
}

// NewDailySummaryTask constructs the summary trigger task.
func NewDailySummaryTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDailySummary, nil, asynq.Queue(QueueDefault))
}

// SendEmailJob delivers queued transactional emails.
type SendEmailJob struct {
	Sender mail.Sender
	Logger *slog.Logger
}

// Handle processes TaskTypeSendEmail tasks.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := j.Sender.Send(sendCtx, payload.To, payload.Subject, payload.Body); err != nil {
		j.logger().Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	return nil
}

func (j *SendEmailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSendEmail))
	}
	return slog.Default().With(slog.String("job", TaskTypeSendEmail))
}
