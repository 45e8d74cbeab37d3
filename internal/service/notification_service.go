package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/college-icrs/icrs-api/internal/models"
	"github.com/college-icrs/icrs-api/internal/repository"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
	"github.com/college-icrs/icrs-api/pkg/jobs"
	"github.com/college-icrs/icrs-api/pkg/mailer"
)

const redisPushTimeout = 2 * time.Second

// NotificationDispatcher hands a rendered notification to a delivery backend without blocking.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// NotificationService turns lifecycle events into email tasks. Dispatch failures are logged
// and discarded so they never fail the operation that triggered them.
type NotificationService struct {
	dispatcher NotificationDispatcher
	metrics    *MetricsService
	logger     *zap.Logger
	enabled    bool
}

// NewNotificationService constructs the service. A nil dispatcher disables notifications.
func NewNotificationService(dispatcher NotificationDispatcher, metrics *MetricsService, logger *zap.Logger, enabled bool) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, metrics: metrics, logger: logger, enabled: enabled && dispatcher != nil}
}

// GrievanceSubmitted notifies the student that their grievance was recorded.
func (s *NotificationService) GrievanceSubmitted(ctx context.Context, g *models.Grievance) {
	view := grievanceView(g, deref(g.StudentName))
	s.send(ctx, models.NotificationGrievanceSubmitted, g, deref(g.StudentEmail), "Grievance submitted: "+g.Title, "submitted", view)
}

// GrievanceAssigned notifies the student that a staff member took the grievance.
func (s *NotificationService) GrievanceAssigned(ctx context.Context, g *models.Grievance) {
	view := grievanceView(g, deref(g.StudentName))
	s.send(ctx, models.NotificationGrievanceAssigned, g, deref(g.StudentEmail), "Grievance assigned: "+g.Title, "assigned", view)
}

// StatusChanged notifies the student of a transition using readable labels.
func (s *NotificationService) StatusChanged(ctx context.Context, g *models.Grievance, from, to models.GrievanceStatus, reason *string) {
	view := grievanceView(g, deref(g.StudentName))
	view.From = from.Label()
	view.Status = to.Label()
	view.Reason = deref(reason)
	subject := fmt.Sprintf("Grievance %s: %s", to.Label(), g.Title)
	s.send(ctx, models.NotificationStatusChanged, g, deref(g.StudentEmail), subject, "status", view)
}

// CommentAdded notifies the other party of the thread. Staff comments go to the student and
// student comments go to the assignee, if any.
func (s *NotificationService) CommentAdded(ctx context.Context, g *models.Grievance, author *models.User, comment *models.Comment) {
	var to, recipient string
	if author.Role.IsStaff() {
		to, recipient = deref(g.StudentEmail), deref(g.StudentName)
	} else {
		to, recipient = deref(g.AssigneeEmail), deref(g.AssigneeName)
	}
	if to == "" || to == author.Email {
		return
	}
	view := grievanceView(g, recipient)
	view.Author = author.FullName
	if g.HideIdentity && author.ID == g.StudentID {
		view.Author = MaskedIdentity
	}
	view.Body = comment.Body
	s.send(ctx, models.NotificationCommentAdded, g, to, "New comment on: "+g.Title, "comment", view)
}

func (s *NotificationService) send(ctx context.Context, kind models.NotificationKind, g *models.Grievance, to, subject, tmpl string, view notificationView) {
	if s == nil || !s.enabled {
		return
	}
	if to == "" {
		s.logger.Debug("notification skipped, no recipient", zap.String("kind", string(kind)), zap.String("grievance_id", g.ID))
		return
	}

	body, err := renderNotification(tmpl, view)
	if err != nil {
		s.logger.Warn("notification discarded", zap.String("kind", string(kind)), zap.Error(err))
		s.metrics.RecordNotification(kind, NotificationDropped)
		return
	}

	n := models.Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		To:          to,
		Subject:     subject,
		Body:        body,
		GrievanceID: g.ID,
		EnqueuedAt:  time.Now().UTC(),
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.logger.Warn("notification discarded",
			zap.String("kind", string(kind)),
			zap.String("grievance_id", g.ID),
			zap.Error(err),
		)
		s.metrics.RecordNotification(kind, NotificationDropped)
		return
	}
	s.metrics.RecordNotification(kind, NotificationEnqueued)
}

// QueueDispatcher hands notifications to the in-process worker pool.
type QueueDispatcher struct {
	queue *jobs.Queue
}

// NewQueueDispatcher constructs a dispatcher for the memory backend.
func NewQueueDispatcher(queue *jobs.Queue) *QueueDispatcher {
	return &QueueDispatcher{queue: queue}
}

// Dispatch enqueues without blocking.
func (d *QueueDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	return d.queue.Enqueue(notificationJob(n))
}

type notificationPusher interface {
	Push(ctx context.Context, n models.Notification) error
}

// RedisDispatcher pushes notifications onto the shared Redis list.
type RedisDispatcher struct {
	repo notificationPusher
}

// NewRedisDispatcher constructs a dispatcher for the redis backend.
func NewRedisDispatcher(repo notificationPusher) *RedisDispatcher {
	return &RedisDispatcher{repo: repo}
}

// Dispatch pushes with a short deadline so a slow Redis does not hold up the request.
func (d *RedisDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, redisPushTimeout)
	defer cancel()
	if err := d.repo.Push(ctx, n); err != nil {
		return appErrors.Wrap(err, appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, appErrors.ErrQueueUnavailable.Message)
	}
	return nil
}

type notificationSource interface {
	notificationPusher
	Pop(ctx context.Context, timeout time.Duration) (*models.Notification, error)
}

// RelayNotifications moves notifications from Redis into the local worker pool until ctx ends.
// A notification already popped when ctx ends is pushed back.
func RelayNotifications(ctx context.Context, source notificationSource, queue *jobs.Queue, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := source.Pop(ctx, 2*time.Second)
		if err != nil {
			if errors.Is(err, repository.ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			logger.Warn("notification relay pop failed", zap.Error(err))
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}

		if !relayOne(ctx, *n, queue) {
			restoreCtx, cancel := context.WithTimeout(context.Background(), redisPushTimeout)
			if err := source.Push(restoreCtx, *n); err != nil {
				logger.Error("notification lost during shutdown", zap.String("notification_id", n.ID), zap.Error(err))
			}
			cancel()
			return
		}
	}
}

func relayOne(ctx context.Context, n models.Notification, queue *jobs.Queue) bool {
	for {
		err := queue.Enqueue(notificationJob(n))
		if err == nil {
			return true
		}
		if !errors.Is(err, jobs.ErrQueueFull) {
			return false
		}
		if !sleepCtx(ctx, 200*time.Millisecond) {
			return false
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func notificationJob(n models.Notification) jobs.Job {
	return jobs.Job{ID: n.ID, Type: string(n.Kind), Payload: n, Enqueued: n.EnqueuedAt}
}

// NotificationWorker delivers queued notifications.
type NotificationWorker struct {
	sender  mailer.Sender
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(sender mailer.Sender, metrics *MetricsService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{sender: sender, metrics: metrics, logger: logger}
}

// Handle is the jobs.Handler for notification tasks. Returning an error asks the queue to retry.
func (w *NotificationWorker) Handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		w.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := w.sender.Send(ctx, mailer.Message{To: n.To, Subject: n.Subject, HTML: n.Body}); err != nil {
		w.metrics.RecordNotification(n.Kind, NotificationFailed)
		return err
	}
	w.metrics.RecordNotification(n.Kind, NotificationSent)
	w.logger.Debug("notification sent", zap.String("notification_id", n.ID), zap.String("kind", string(n.Kind)))
	return nil
}

// Dropped records a notification abandoned after retries.
func (w *NotificationWorker) Dropped(job jobs.Job, err error) {
	kind := models.NotificationKind(job.Type)
	w.metrics.RecordNotification(kind, NotificationDropped)
	w.logger.Warn("notification dropped", zap.String("job_id", job.ID), zap.String("kind", job.Type), zap.Error(err))
}
