package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"gymops/internal/civil"
	"gymops/internal/logger"
	"gymops/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

const (
	TypeBookingConfirmation = "booking_confirmation"
	TypeBookingCancellation = "booking_cancellation"
	TypePasswordReset       = "password_reset"
	TypeSubscriptionReceipt = "subscription_receipt"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Service queues outgoing mail in Redis and delivers it over SMTP from a
// single worker loop started with Start.
type Service struct {
	redis      *redis.Client
	cfg        Config
	retryDelay time.Duration
	send       func(cfg Config, job Job) error
}

func New(cfg Config, redisAddr string) *Service {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: redisAddr}), cfg)
}

func NewWithClient(client *redis.Client, cfg Config) *Service {
	return &Service{
		redis:      client,
		cfg:        cfg,
		retryDelay: 5 * time.Second,
		send:       sendSMTP,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.WithError(err).Error("failed to queue email", "to", job.To, "type", job.Type)
		metrics.RecordEmail(job.Type, "queue_error")
		return fmt.Errorf("queue email: %w", err)
	}

	metrics.RecordEmail(job.Type, "queued")
	logger.Debug("email queued", "to", job.To, "type", job.Type)
	return nil
}

func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	})
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.WithError(err).Warn("email queue read failed")
			sleep(ctx, time.Second)
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.WithError(err).Error("dropping malformed email job")
		return
	}

	s.deliver(ctx, job)
}

func (s *Service) deliver(ctx context.Context, job Job) {
	job.Tries++
	logger.Debug("sending email", "to", job.To, "type", job.Type, "attempt", job.Tries)

	err := s.send(s.cfg, job)
	if err == nil {
		metrics.RecordEmail(job.Type, "sent")
		logger.Info("email sent", "to", job.To, "type", job.Type)
		return
	}

	logger.WithError(err).Warn("email delivery failed", "to", job.To, "attempt", job.Tries)

	if job.Tries < maxTries {
		sleep(ctx, s.retryDelay)
		data, _ := json.Marshal(job)
		// The worker's ctx may already be cancelled; the job must still go back.
		if err := s.redis.LPush(context.WithoutCancel(ctx), queueKey, string(data)).Err(); err != nil {
			logger.WithError(err).Error("failed to requeue email", "to", job.To)
		}
		metrics.RecordEmail(job.Type, "retry")
		return
	}

	s.saveFailed(ctx, job, err)
}

func (s *Service) saveFailed(ctx context.Context, job Job, cause error) {
	data, _ := json.Marshal(map[string]any{
		"job":   job,
		"error": cause.Error(),
		"time":  time.Now(),
	})
	if err := s.redis.LPush(context.WithoutCancel(ctx), failedQueueKey, string(data)).Err(); err != nil {
		logger.WithError(err).Error("failed to record dead email", "to", job.To)
	}
	metrics.RecordEmail(job.Type, "failed")
	logger.Error("email moved to failed queue", "to", job.To, "type", job.Type, "tries", job.Tries)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func sendSMTP(cfg Config, job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", cfg.FromName, cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	return smtp.SendMail(cfg.SMTPHost+":"+cfg.SMTPPort, auth, cfg.From, []string{job.To}, []byte(message))
}

// QueueLength reports the pending job count and mirrors it into the gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		logger.WithError(err).Warn("email queue length unavailable")
		return 0
	}
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

const timeLayout = "Jan 2, 2006 at 3:04 PM"

func (s *Service) SendBookingConfirmation(ctx context.Context, email, name, trainerName string, when time.Time) error {
	subject := "Session booked with " + trainerName
	body := fmt.Sprintf(`Hi %s,

Your training session is booked.

Trainer: %s
Time: %s

See you at the gym!

- %s`, name, trainerName, when.Format(timeLayout), s.cfg.FromName)

	return s.Send(ctx, TypeBookingConfirmation, email, name, subject, body)
}

func (s *Service) SendBookingCancellation(ctx context.Context, email, name, trainerName string, when time.Time) error {
	subject := "Session cancelled"
	body := fmt.Sprintf(`Hi %s,

Your session has been cancelled:

Trainer: %s
Time: %s

- %s`, name, trainerName, when.Format(timeLayout), s.cfg.FromName)

	return s.Send(ctx, TypeBookingCancellation, email, name, subject, body)
}

func (s *Service) SendPasswordReset(ctx context.Context, email, name, link string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(`Hi %s,

Use the link below to choose a new password. It expires shortly and works once.

%s

If you did not ask for this, ignore this email.

- %s`, name, link, s.cfg.FromName)

	return s.Send(ctx, TypePasswordReset, email, name, subject, body)
}

func (s *Service) SendSubscriptionReceipt(ctx context.Context, email, name, packageName string, start, end civil.Date) error {
	subject := "Your " + packageName + " subscription"
	body := fmt.Sprintf(`Hi %s,

Thanks for your purchase.

Package: %s
Valid: %s to %s

- %s`, name, packageName, start, end, s.cfg.FromName)

	return s.Send(ctx, TypeSubscriptionReceipt, email, name, subject, body)
}
