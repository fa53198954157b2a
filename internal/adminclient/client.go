// Package adminclient talks to the certificate admin API.
package adminclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"certportal/pkg/platform/envelope"
)

const TokenHeader = "X-Admin-Token"

// Certificate mirrors the admin representation returned by the API.
type Certificate struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	CourseID    int64      `json:"courseId"`
	Status      string     `json:"status"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	CourseTitle string     `json:"courseTitle"`
	IssuedAt    *time.Time `json:"issuedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// APIError is a non-2xx answer carrying the service's error body.
type APIError struct {
	StatusCode  int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("admin api: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("admin api: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	http *resty.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetHeader(TokenHeader, token).
			SetError(&APIError{}),
	}
}

func (c *Client) List(ctx context.Context) ([]Certificate, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/certificates")
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	if err := check(resp); err != nil {
		return nil, err
	}
	return envelope.List[Certificate](resp.Body())
}

func (c *Client) Create(ctx context.Context, userID, courseID int64, status string) (*Certificate, error) {
	body := map[string]any{"userId": userID, "courseId": courseID}
	if status != "" {
		body["status"] = status
	}
	var out Certificate
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/certificates")
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	if err := check(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetStatus(ctx context.Context, certID, status string) (*Certificate, error) {
	var out Certificate
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", certID).
		SetBody(map[string]string{"status": status}).
		SetResult(&out).
		Put("/certificates/{id}")
	if err != nil {
		return nil, fmt.Errorf("update certificate %s: %w", certID, err)
	}
	if err := check(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, certID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", certID).
		Delete("/certificates/{id}")
	if err != nil {
		return fmt.Errorf("delete certificate %s: %w", certID, err)
	}
	return check(resp)
}

func check(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.StatusCode = resp.StatusCode()
	if apiErr.Code == "" {
		apiErr.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(resp.StatusCode()), " ", "_"))
	}
	return apiErr
}
