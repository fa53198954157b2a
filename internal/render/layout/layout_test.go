package layout

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
)

var (
	fixedID   = id.CertificateID(uuid.MustParse("6f1c2a8e-3b4d-4c5e-9f10-112233445566"))
	createdAt = time.Date(2025, 12, 30, 9, 0, 0, 0, time.UTC)
	issuedAt  = time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	brand     = Branding{Institution: "Northwind Academy", Subtitle: "Continuing Studies", Contact: "registrar@northwind.test"}
)

func approvedInput() Input {
	at := issuedAt
	return Input{
		CertificateID: fixedID,
		Approved:      true,
		IssuedAt:      &at,
		CreatedAt:     createdAt,
		LearnerName:   "Ada Lovelace",
		LearnerEmail:  "ada@example.com",
		CourseTitle:   "Analytical Engines 101",
	}
}

func pendingInput() Input {
	in := approvedInput()
	in.Approved = false
	in.IssuedAt = nil
	return in
}

func TestBuild_Total(t *testing.T) {
	for name, in := range map[string]Input{"approved": approvedInput(), "pending": pendingInput()} {
		t.Run(name, func(t *testing.T) {
			doc := Build(in, brand)

			require.NotEmpty(t, doc.Primitives)
			assert.Equal(t, PageWidth, doc.Width)
			assert.Equal(t, PageHeight, doc.Height)
			for i, p := range doc.Primitives {
				assert.True(t, (p.Text == nil) != (p.Shape == nil), "primitive %d must hold exactly one kind", i)
			}

			texts := doc.Texts()
			assert.Contains(t, texts, "Ada Lovelace")
			assert.Contains(t, texts, "Analytical Engines 101")
			assert.Len(t, doc.TextsWithRole(RoleStatus), 1)
			assert.Len(t, doc.ShapesWithRole(RoleStatusBadge), 1)
		})
	}
}

func TestBuild_IssueDate(t *testing.T) {
	t.Run("approved with issue date has exactly one date run", func(t *testing.T) {
		doc := Build(approvedInput(), brand)

		dates := doc.TextsWithRole(RoleIssueDate)
		require.Len(t, dates, 1)
		assert.Equal(t, "March 14, 2026", dates[0].Content)
		assert.Contains(t, doc.Texts(), "Date of Issue")
	})

	t.Run("pending omits the date block", func(t *testing.T) {
		doc := Build(pendingInput(), brand)

		assert.Empty(t, doc.TextsWithRole(RoleIssueDate))
		assert.NotContains(t, doc.Texts(), "Date of Issue")
	})

	t.Run("date is formatted in UTC", func(t *testing.T) {
		in := approvedInput()
		local := time.Date(2026, 3, 15, 1, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
		in.IssuedAt = &local

		dates := Build(in, brand).TextsWithRole(RoleIssueDate)
		require.Len(t, dates, 1)
		assert.Equal(t, "March 14, 2026", dates[0].Content)
	})

	t.Run("reverted certificate keeps its date", func(t *testing.T) {
		in := approvedInput()
		in.Approved = false

		doc := Build(in, brand)
		assert.Len(t, doc.TextsWithRole(RoleIssueDate), 1)
		assert.Equal(t, "Pending", doc.TextsWithRole(RoleStatus)[0].Content)
	})
}

func TestBuild_StatusBadge(t *testing.T) {
	approved := Build(approvedInput(), brand)
	pending := Build(pendingInput(), brand)

	assert.Equal(t, ColorGreen, *approved.ShapesWithRole(RoleStatusBadge)[0].Fill)
	assert.Equal(t, ColorWhite, approved.TextsWithRole(RoleStatus)[0].Color)
	assert.Equal(t, "Approved", approved.TextsWithRole(RoleStatus)[0].Content)

	assert.Equal(t, ColorAmber, *pending.ShapesWithRole(RoleStatusBadge)[0].Fill)
	assert.Equal(t, ColorUmber, pending.TextsWithRole(RoleStatus)[0].Color)
	assert.Equal(t, "Pending", pending.TextsWithRole(RoleStatus)[0].Content)
}

func TestBuild_Deterministic(t *testing.T) {
	assert.Equal(t, Build(approvedInput(), brand), Build(approvedInput(), brand))
}

func TestBuild_BlockOrder(t *testing.T) {
	doc := Build(approvedInput(), brand)

	var roles []Role
	for _, p := range doc.Primitives {
		if r := p.Role(); len(roles) == 0 || roles[len(roles)-1] != r {
			roles = append(roles, r)
		}
	}
	assert.Equal(t, RoleBackground, roles[0])
	assert.Less(t, indexOf(roles, RoleInstitution), indexOf(roles, RoleTitle))
	assert.Less(t, indexOf(roles, RoleTitle), indexOf(roles, RoleSeal))
	assert.Less(t, indexOf(roles, RoleSeal), indexOf(roles, RoleLearnerName))
	assert.Less(t, indexOf(roles, RoleLearnerName), indexOf(roles, RoleCourseFrame))
	assert.Less(t, indexOf(roles, RoleCourseFrame), indexOf(roles, RoleCourseTitle))
	assert.Less(t, indexOf(roles, RoleCourseTitle), indexOf(roles, RoleIssueDate))
	assert.Less(t, indexOf(roles, RoleIssueDate), indexOf(roles, RoleStatusBadge))
	assert.Less(t, indexOf(roles, RoleIdentifier), indexOf(roles, RoleFinePrint))
}

func TestBuild_Seal(t *testing.T) {
	doc := Build(pendingInput(), brand)

	circles := doc.ShapesWithRole(RoleSeal)
	require.Len(t, circles, 3)
	for _, c := range circles {
		assert.Equal(t, ShapeCircle, c.Kind)
		assert.Equal(t, sealX, c.X)
		assert.Equal(t, sealY, c.Y)
	}
	assert.Greater(t, circles[0].R, circles[1].R)
	assert.Greater(t, circles[1].R, circles[2].R)
	assert.Equal(t, "CERTIFIED", doc.TextsWithRole(RoleSealLabel)[0].Content)
}

func TestBuild_Underline(t *testing.T) {
	t.Run("centred under the name", func(t *testing.T) {
		line := Build(approvedInput(), brand).ShapesWithRole(RoleUnderline)[0]

		assert.InDelta(t, centerX, line.X+line.W/2, 1e-9)
		assert.InDelta(t, UnderlineWidth("Ada Lovelace"), line.W, 1e-9)
	})

	t.Run("clamped", func(t *testing.T) {
		assert.Equal(t, 80.0, UnderlineWidth(""))
		assert.Equal(t, 80.0, UnderlineWidth("Bo"))
		assert.InDelta(t, 20+4.2*30, UnderlineWidth(strings.Repeat("x", 30)), 1e-9)
		assert.Equal(t, 200.0, UnderlineWidth(strings.Repeat("x", 80)))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		assert.Equal(t, UnderlineWidth("Zoe Muller Sorensen"), UnderlineWidth("Zoë Müller Sørensen"))
	})
}

func TestBuild_LongCourseTitle(t *testing.T) {
	in := approvedInput()
	in.CourseTitle = "Advanced Topics in Distributed Systems: Consensus, Replication and Recovery"

	run := Build(in, brand).TextsWithRole(RoleCourseTitle)[0]
	assert.Equal(t, FontCourseLong, run.Size)
	assert.Equal(t, in.CourseTitle, run.Content)

	short := Build(approvedInput(), brand).TextsWithRole(RoleCourseTitle)[0]
	assert.Equal(t, FontCourse, short.Size)
}

func TestBuild_Branding(t *testing.T) {
	t.Run("branding text appears in header and footer", func(t *testing.T) {
		doc := Build(approvedInput(), brand)

		assert.Equal(t, "Northwind Academy", doc.TextsWithRole(RoleInstitution)[0].Content)
		assert.Equal(t, "Contact: registrar@northwind.test", doc.TextsWithRole(RoleContact)[0].Content)
		assert.Contains(t, doc.TextsWithRole(RoleFinePrint)[0].Content, "Northwind Academy")
	})

	t.Run("empty branding falls back to defaults", func(t *testing.T) {
		doc := Build(approvedInput(), Branding{})

		assert.NotEmpty(t, doc.TextsWithRole(RoleInstitution)[0].Content)
		assert.Empty(t, doc.TextsWithRole(RoleContact))
	})
}

func TestDisplayID(t *testing.T) {
	got := DisplayID(fixedID, createdAt)
	assert.Regexp(t, `^CERT-2025-[0-9A-F]{8}$`, got)
	assert.Equal(t, got, DisplayID(fixedID, createdAt))

	other := DisplayID(id.NewCertificateID(), createdAt)
	assert.NotEqual(t, got, other)

	t.Run("approval in a later year keeps the printed id", func(t *testing.T) {
		approved := approvedInput()
		require.NotEqual(t, approved.CreatedAt.Year(), approved.IssuedAt.Year())

		before := Build(pendingInput(), brand).DisplayID
		after := Build(approved, brand).DisplayID
		assert.Equal(t, got, before)
		assert.Equal(t, before, after)
	})

	ids := Build(approvedInput(), brand).TextsWithRole(RoleIdentifier)
	require.Len(t, ids, 1)
	assert.Equal(t, "Certificate ID: "+got, ids[0].Content)
}

func TestFromView(t *testing.T) {
	at := issuedAt
	view := &models.CertificateView{
		ID:          fixedID,
		Status:      models.StatusApproved,
		Username:    "Ada Lovelace",
		Email:       "ada@example.com",
		CourseTitle: "Analytical Engines 101",
		IssuedAt:    &at,
		CreatedAt:   createdAt,
	}

	assert.Equal(t, approvedInput(), FromView(view))
}

func indexOf(roles []Role, role Role) int {
	for i, r := range roles {
		if r == role {
			return i
		}
	}
	return -1
}
