// Package httpclient reads the learner and course directory over HTTP. The
// upstream answers with either a bare JSON array or {"data": [...]}.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"certportal/internal/certificate/models"
	"certportal/internal/directory"
	id "certportal/pkg/domain"
	"certportal/pkg/platform/circuit"
	"certportal/pkg/platform/envelope"
	"certportal/pkg/platform/sentinel"
)

// Client is a directory.Directory backed by the enrolment API.
type Client struct {
	http    *resty.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(2).
			SetRetryWaitTime(100 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			}),
		breaker: circuit.New("directory", circuit.WithFailureThreshold(5), circuit.WithCooldown(15*time.Second)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type learnerDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type courseDTO struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func (c *Client) Learners(ctx context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error) {
	ids = directory.Unique(ids)
	out := make(map[id.LearnerID]models.Learner, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := fetch[learnerDTO](ctx, c, "/users", joinIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		l := id.LearnerID(item.ID)
		out[l] = models.Learner{ID: l, Username: item.Username, Email: item.Email}
	}
	return out, nil
}

func (c *Client) Courses(ctx context.Context, ids []id.CourseID) (map[id.CourseID]models.Course, error) {
	ids = directory.Unique(ids)
	out := make(map[id.CourseID]models.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := fetch[courseDTO](ctx, c, "/courses", joinIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		cid := id.CourseID(item.ID)
		out[cid] = models.Course{ID: cid, Title: item.Title}
	}
	return out, nil
}

func fetch[T any](ctx context.Context, c *Client, path, ids string) ([]T, error) {
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("directory %s: circuit open: %w", path, sentinel.ErrUnavailable)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", ids).
		Get(path)
	if err != nil {
		c.recordFailure(ctx, path, err)
		return nil, fmt.Errorf("directory %s: %w", path, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		c.recordFailure(ctx, path, fmt.Errorf("status %d", resp.StatusCode()))
		return nil, fmt.Errorf("directory %s: upstream status %d: %w", path, resp.StatusCode(), sentinel.ErrUnavailable)
	}
	if resp.StatusCode() == http.StatusNotFound {
		c.breaker.RecordSuccess()
		return []T{}, nil
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("directory %s: unexpected status %d", path, resp.StatusCode())
	}

	c.breaker.RecordSuccess()
	items, err := envelope.List[T](resp.Body())
	if err != nil {
		return nil, fmt.Errorf("directory %s: %w", path, err)
	}
	return items, nil
}

func (c *Client) recordFailure(ctx context.Context, path string, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "directory circuit opened",
			"breaker", c.breaker.Name(),
			"path", path,
			"error", err,
		)
	}
}

func joinIDs[T interface{ String() string }](ids []T) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
