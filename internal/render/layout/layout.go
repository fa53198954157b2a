// Package layout turns a certificate into an ordered list of drawing
// primitives on an A4 landscape canvas measured in millimetres. Both the
// screen preview and the PDF export paint this list; neither adds content
// of its own.
package layout

import (
	"time"
	"unicode/utf8"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
)

const (
	centerX = PageWidth / 2

	// Seal centre.
	sealX = 254.0
	sealY = 46.0

	// Course frame.
	courseFrameX = 58.5
	courseFrameY = 121.0
	courseFrameW = 180.0
	courseFrameH = 16.0

	// Titles longer than this drop to the smaller course class.
	longCourseTitleRunes = 48

	// Detail row column centres.
	dateColumnX   = 98.5
	statusColumnX = 198.5

	badgeW = 36.0
	badgeH = 9.0

	dateLayout = "January 2, 2006"
)

// Input is everything the layout reads. It carries no behaviour.
type Input struct {
	CertificateID id.CertificateID
	Approved      bool
	IssuedAt      *time.Time
	CreatedAt     time.Time
	LearnerName   string
	LearnerEmail  string
	CourseTitle   string
}

// FromView adapts the certificate read projection.
func FromView(v *models.CertificateView) Input {
	return Input{
		CertificateID: v.ID,
		Approved:      v.IsApproved(),
		IssuedAt:      v.IssuedAt,
		CreatedAt:     v.CreatedAt,
		LearnerName:   v.Username,
		LearnerEmail:  v.Email,
		CourseTitle:   v.CourseTitle,
	}
}

// Branding is the institution text printed in the header and footer.
type Branding struct {
	Institution string
	Subtitle    string
	Contact     string
}

// WithDefaults fills empty institution and subtitle text.
func (b Branding) WithDefaults() Branding {
	if b.Institution == "" {
		b.Institution = "Continuing Education Institute"
	}
	if b.Subtitle == "" {
		b.Subtitle = "Professional Development Program"
	}
	return b
}

// Build lays out a certificate. It is pure and total: every input yields a
// complete document, pending certificates simply omit the issue date.
func Build(in Input, brand Branding) *Document {
	brand = brand.WithDefaults()
	b := &builder{}

	b.frame()
	b.header(brand)
	b.title()
	b.seal()
	b.recipient(in.LearnerName, in.LearnerEmail)
	b.course(in.CourseTitle)
	b.details(in)

	displayID := DisplayID(in.CertificateID, in.CreatedAt)
	b.text(TextRun{X: centerX, Y: 172, Content: "Certificate ID: " + displayID, Size: FontFine, Color: ColorSlate, Role: RoleIdentifier})
	b.footer(brand)

	return &Document{
		Width:      PageWidth,
		Height:     PageHeight,
		Primitives: b.out,
		Approved:   in.Approved,
		DisplayID:  displayID,
		Title:      brand.Institution + " Certificate of Completion",
	}
}

// FormatIssueDate renders an issue date the way it appears on the page.
func FormatIssueDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// UnderlineWidth sizes the rule under the learner name from its length.
func UnderlineWidth(name string) float64 {
	w := float64(utf8.RuneCountInString(name))*4.2 + 20
	return min(max(w, 80), 200)
}

// CourseFontClass picks the title size so long titles fit the frame without
// truncation.
func CourseFontClass(title string) FontClass {
	if utf8.RuneCountInString(title) > longCourseTitleRunes {
		return FontCourseLong
	}
	return FontCourse
}

type builder struct {
	out []Primitive
}

// text defaults the alignment, weight and style so blocks only spell out
// what differs.
func (b *builder) text(t TextRun) {
	if t.Align == "" {
		t.Align = AlignCenter
	}
	if t.Weight == "" {
		t.Weight = WeightRegular
	}
	if t.Style == "" {
		t.Style = StyleNormal
	}
	b.out = append(b.out, Primitive{Text: &t})
}

func (b *builder) shape(s Shape) {
	b.out = append(b.out, Primitive{Shape: &s})
}

func (b *builder) hline(x, y, w float64, c Color, width float64, role Role) {
	b.shape(Shape{Kind: ShapeLine, X: x, Y: y, W: w, Stroke: colorRef(c), StrokeWidth: width, Role: role})
}

func (b *builder) frame() {
	b.shape(Shape{Kind: ShapeRect, W: PageWidth, H: PageHeight, Fill: colorRef(ColorPaper), Role: RoleBackground})
	b.shape(Shape{Kind: ShapeRect, X: 8, Y: 8, W: PageWidth - 16, H: PageHeight - 16, Stroke: colorRef(ColorNavy), StrokeWidth: 1.2, Role: RoleBorder})
	b.shape(Shape{Kind: ShapeRect, X: 12, Y: 12, W: PageWidth - 24, H: PageHeight - 24, Stroke: colorRef(ColorGold), StrokeWidth: 0.4, Role: RoleBorder})
}

func (b *builder) header(brand Branding) {
	b.text(TextRun{X: centerX, Y: 30, Content: brand.Institution, Size: FontHeading, Weight: WeightBold, Color: ColorNavy, Role: RoleInstitution})
	b.text(TextRun{X: centerX, Y: 37, Content: brand.Subtitle, Size: FontBody, Style: StyleItalic, Color: ColorSlate, Role: RoleSubtitle})
	b.hline(centerX-40, 42, 80, ColorGold, 0.6, RoleSeparator)
}

func (b *builder) title() {
	b.text(TextRun{X: centerX, Y: 58, Content: "Certificate of Completion", Size: FontDisplay, Weight: WeightBold, Color: ColorNavy, Role: RoleTitle})
}

func (b *builder) seal() {
	b.shape(Shape{Kind: ShapeCircle, X: sealX, Y: sealY, R: 16, Fill: colorRef(ColorGold), Role: RoleSeal})
	b.shape(Shape{Kind: ShapeCircle, X: sealX, Y: sealY, R: 13, Stroke: colorRef(ColorWhite), StrokeWidth: 0.5, Role: RoleSeal})
	b.shape(Shape{Kind: ShapeCircle, X: sealX, Y: sealY, R: 10, Fill: colorRef(ColorNavy), Role: RoleSeal})
	b.text(TextRun{X: sealX, Y: sealY + 1.2, Content: "CERTIFIED", Size: FontSeal, Weight: WeightBold, Color: ColorWhite, Role: RoleSealLabel})
}

func (b *builder) recipient(name, email string) {
	b.text(TextRun{X: centerX, Y: 76, Content: "This certifies that", Size: FontBody, Style: StyleItalic, Color: ColorSlate, Role: RoleLeadIn})
	b.text(TextRun{X: centerX, Y: 90, Content: name, Size: FontName, Weight: WeightBold, Color: ColorNavy, Role: RoleLearnerName})
	w := UnderlineWidth(name)
	b.hline(centerX-w/2, 93, w, ColorGold, 0.5, RoleUnderline)
	b.text(TextRun{X: centerX, Y: 99, Content: email, Size: FontSmall, Color: ColorSlate, Role: RoleLearnerEmail})
}

func (b *builder) course(title string) {
	b.text(TextRun{X: centerX, Y: 112, Content: "has successfully completed the course", Size: FontBody, Style: StyleItalic, Color: ColorSlate, Role: RoleLeadIn})
	b.shape(Shape{
		Kind: ShapeRect, X: courseFrameX, Y: courseFrameY, W: courseFrameW, H: courseFrameH,
		Stroke: colorRef(ColorGold), Fill: colorRef(ColorWhite), StrokeWidth: 0.5, Role: RoleCourseFrame,
	})
	b.text(TextRun{X: centerX, Y: courseFrameY + 10.5, Content: title, Size: CourseFontClass(title), Weight: WeightBold, Color: ColorNavy, Role: RoleCourseTitle})
}

func (b *builder) details(in Input) {
	if in.IssuedAt != nil {
		b.text(TextRun{X: dateColumnX, Y: 150, Content: "Date of Issue", Size: FontSmall, Color: ColorSlate, Role: RoleLabel})
		b.text(TextRun{X: dateColumnX, Y: 157, Content: FormatIssueDate(*in.IssuedAt), Size: FontBody, Weight: WeightBold, Color: ColorNavy, Role: RoleIssueDate})
	}

	fill, ink, label := ColorAmber, ColorUmber, "Pending"
	if in.Approved {
		fill, ink, label = ColorGreen, ColorWhite, "Approved"
	}
	b.text(TextRun{X: statusColumnX, Y: 150, Content: "Status", Size: FontSmall, Color: ColorSlate, Role: RoleLabel})
	b.shape(Shape{Kind: ShapeRect, X: statusColumnX - badgeW/2, Y: 152, W: badgeW, H: badgeH, Fill: colorRef(fill), Role: RoleStatusBadge})
	b.text(TextRun{X: statusColumnX, Y: 158.2, Content: label, Size: FontSmall, Weight: WeightBold, Color: ink, Role: RoleStatus})
}

func (b *builder) footer(brand Branding) {
	b.hline(40, 180, PageWidth-80, ColorGold, 0.3, RoleSeparator)
	if brand.Contact != "" {
		b.text(TextRun{X: centerX, Y: 187, Content: "Contact: " + brand.Contact, Size: FontSmall, Color: ColorSlate, Role: RoleContact})
	}
	b.text(TextRun{
		X: centerX, Y: 193, Size: FontFine, Style: StyleItalic, Color: ColorSlate, Role: RoleFinePrint,
		Content: "Issued by " + brand.Institution + ". Verify this certificate with the ID shown above.",
	})
}
