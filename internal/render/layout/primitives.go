package layout

import "fmt"

// Canvas size in millimetres (A4 landscape).
const (
	PageWidth  = 297.0
	PageHeight = 210.0
)

// Color is an opaque sRGB colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the CSS form, e.g. "#1f2a44".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGB returns the components as ints, the form PDF writers expect.
func (c Color) RGB() (int, int, int) {
	return int(c.R), int(c.G), int(c.B)
}

// Palette
var (
	ColorPaper  = Color{253, 251, 245}
	ColorNavy   = Color{31, 42, 68}
	ColorGold   = Color{184, 146, 60}
	ColorSlate  = Color{96, 104, 118}
	ColorWhite  = Color{255, 255, 255}
	ColorGreen  = Color{46, 125, 50}
	ColorAmber  = Color{255, 193, 7}
	ColorUmber  = Color{94, 64, 0}
	ColorShadow = Color{236, 232, 220}
)

// FontClass is a named text size. Renderers map classes to their own units
// through Points.
type FontClass string

const (
	FontDisplay    FontClass = "display"
	FontName       FontClass = "name"
	FontHeading    FontClass = "heading"
	FontCourse     FontClass = "course"
	FontCourseLong FontClass = "course-long"
	FontBody       FontClass = "body"
	FontSmall      FontClass = "small"
	FontSeal       FontClass = "seal"
	FontFine       FontClass = "fine"
)

var fontPoints = map[FontClass]float64{
	FontDisplay:    34,
	FontName:       26,
	FontHeading:    18,
	FontCourse:     16,
	FontCourseLong: 12,
	FontBody:       12,
	FontSmall:      9,
	FontSeal:       7,
	FontFine:       7,
}

// Points returns the size in typographic points. Unknown classes fall back to
// the body size.
func (f FontClass) Points() float64 {
	if pt, ok := fontPoints[f]; ok {
		return pt
	}
	return fontPoints[FontBody]
}

// Millimetres returns the point size converted to canvas units.
func (f FontClass) Millimetres() float64 {
	return f.Points() * 25.4 / 72
}

type Weight string

const (
	WeightRegular Weight = "regular"
	WeightBold    Weight = "bold"
)

type Style string

const (
	StyleNormal Style = "normal"
	StyleItalic Style = "italic"
)

// Align anchors a text run horizontally on its X coordinate.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Role tags a primitive with the part of the certificate it belongs to.
type Role string

const (
	RoleBackground   Role = "background"
	RoleBorder       Role = "border"
	RoleInstitution  Role = "institution"
	RoleSubtitle     Role = "subtitle"
	RoleSeparator    Role = "separator"
	RoleTitle        Role = "title"
	RoleSeal         Role = "seal"
	RoleSealLabel    Role = "seal-label"
	RoleLeadIn       Role = "lead-in"
	RoleLearnerName  Role = "learner-name"
	RoleUnderline    Role = "underline"
	RoleLearnerEmail Role = "learner-email"
	RoleCourseFrame  Role = "course-frame"
	RoleCourseTitle  Role = "course-title"
	RoleLabel        Role = "label"
	RoleIssueDate    Role = "issue-date"
	RoleStatusBadge  Role = "status-badge"
	RoleStatus       Role = "status"
	RoleIdentifier   Role = "identifier"
	RoleContact      Role = "contact"
	RoleFinePrint    Role = "fine-print"
)

// TextRun is a single line of text. Y is the baseline.
type TextRun struct {
	X, Y    float64
	Content string
	Size    FontClass
	Weight  Weight
	Style   Style
	Color   Color
	Align   Align
	Role    Role
}

func (t TextRun) Bold() bool   { return t.Weight == WeightBold }
func (t TextRun) Italic() bool { return t.Style == StyleItalic }

type ShapeKind string

const (
	ShapeRect   ShapeKind = "rect"
	ShapeCircle ShapeKind = "circle"
	ShapeLine   ShapeKind = "line"
)

// Shape is a rectangle, circle or line. Rectangles use X, Y, W, H with the
// origin at the top-left corner. Circles are centred on X, Y with radius R.
// Lines run from (X, Y) to (X+W, Y+H). A nil Stroke or Fill is not painted.
type Shape struct {
	Kind        ShapeKind
	X, Y        float64
	W, H, R     float64
	Stroke      *Color
	Fill        *Color
	StrokeWidth float64
	Role        Role
}

// Primitive holds exactly one of Text or Shape.
type Primitive struct {
	Text  *TextRun
	Shape *Shape
}

func (p Primitive) IsText() bool { return p.Text != nil }

func (p Primitive) Role() Role {
	if p.Text != nil {
		return p.Text.Role
	}
	if p.Shape != nil {
		return p.Shape.Role
	}
	return ""
}

// Document is the ordered primitive list for one certificate. Primitives are
// painted in slice order.
type Document struct {
	Width, Height float64
	Primitives    []Primitive
	Approved      bool
	DisplayID     string
	Title         string
}

// Texts returns the text contents in paint order.
func (d *Document) Texts() []string {
	out := make([]string, 0, len(d.Primitives))
	for _, p := range d.Primitives {
		if p.Text != nil {
			out = append(out, p.Text.Content)
		}
	}
	return out
}

// TextsWithRole returns the text runs tagged with role.
func (d *Document) TextsWithRole(role Role) []TextRun {
	var out []TextRun
	for _, p := range d.Primitives {
		if p.Text != nil && p.Text.Role == role {
			out = append(out, *p.Text)
		}
	}
	return out
}

// ShapesWithRole returns the shapes tagged with role.
func (d *Document) ShapesWithRole(role Role) []Shape {
	var out []Shape
	for _, p := range d.Primitives {
		if p.Shape != nil && p.Shape.Role == role {
			out = append(out, *p.Shape)
		}
	}
	return out
}

func colorRef(c Color) *Color { return &c }
