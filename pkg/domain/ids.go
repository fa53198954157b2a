package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "certportal/pkg/domain-errors"
)

// CertificateID identifies a certificate record. Typed so it cannot be mixed up
// with other UUID-shaped identifiers.
type CertificateID uuid.UUID

// LearnerID references a learner in the external learner directory.
type LearnerID int64

// CourseID references a course in the external course directory.
type CourseID int64

// maxIDLength bounds parse input before any further work.
const maxIDLength = 64

// NewCertificateID returns a fresh random certificate id.
func NewCertificateID() CertificateID {
	return CertificateID(uuid.New())
}

func (id CertificateID) String() string {
	return uuid.UUID(id).String()
}

func (id CertificateID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText lets CertificateID serialize as a plain UUID string.
func (id CertificateID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CertificateID) UnmarshalText(b []byte) error {
	parsed, err := ParseCertificateID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseCertificateID validates untrusted input: non-empty, valid, non-nil UUID.
func ParseCertificateID(s string) (CertificateID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CertificateID{}, err
	}
	return CertificateID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	if len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid id format")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be nil")
	}
	return u, nil
}

func (id LearnerID) IsValid() bool { return id > 0 }

func (id LearnerID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id CourseID) IsValid() bool { return id > 0 }

func (id CourseID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseLearnerID parses a positive decimal learner id, e.g. a JWT subject.
func ParseLearnerID(s string) (LearnerID, error) {
	n, err := parsePositive(s)
	if err != nil {
		return 0, err
	}
	return LearnerID(n), nil
}

// ParseCourseID parses a positive decimal course id.
func ParseCourseID(s string) (CourseID, error) {
	n, err := parsePositive(s)
	if err != nil {
		return 0, err
	}
	return CourseID(n), nil
}

func parsePositive(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be a positive integer")
	}
	return n, nil
}
