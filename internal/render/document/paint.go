package document

import (
	"certportal/internal/render/layout"
)

// Surface is the subset of the fpdf drawing API the painter needs.
// *fpdf.Fpdf satisfies it.
type Surface interface {
	SetFont(familyStr, styleStr string, size float64)
	SetTextColor(r, g, b int)
	SetDrawColor(r, g, b int)
	SetFillColor(r, g, b int)
	SetLineWidth(width float64)
	GetStringWidth(s string) float64
	Text(x, y float64, txtStr string)
	Rect(x, y, w, h float64, styleStr string)
	Circle(x, y, r float64, styleStr string)
	Line(x1, y1, x2, y2 float64)
}

// Paint draws every primitive of doc onto s in order. Coordinates are
// millimetres on the page; text Y is the baseline. Text is drawn as the
// layout holds it, so s must carry Unicode fonts (see NewPDF).
func Paint(s Surface, doc *layout.Document) {
	for _, p := range doc.Primitives {
		switch {
		case p.Text != nil:
			paintText(s, *p.Text)
		case p.Shape != nil:
			paintShape(s, *p.Shape)
		}
	}
}

func paintText(s Surface, t layout.TextRun) {
	s.SetFont(FontFamily, fontStyle(t), t.Size.Points())
	s.SetTextColor(t.Color.RGB())

	x := t.X
	switch t.Align {
	case layout.AlignCenter:
		x -= s.GetStringWidth(t.Content) / 2
	case layout.AlignRight:
		x -= s.GetStringWidth(t.Content)
	}
	s.Text(x, t.Y, t.Content)
}

func paintShape(s Surface, sh layout.Shape) {
	if sh.Stroke != nil {
		s.SetDrawColor(sh.Stroke.RGB())
		s.SetLineWidth(sh.StrokeWidth)
	}
	if sh.Fill != nil {
		s.SetFillColor(sh.Fill.RGB())
	}

	switch sh.Kind {
	case layout.ShapeRect:
		s.Rect(sh.X, sh.Y, sh.W, sh.H, drawStyle(sh))
	case layout.ShapeCircle:
		s.Circle(sh.X, sh.Y, sh.R, drawStyle(sh))
	case layout.ShapeLine:
		s.Line(sh.X, sh.Y, sh.X+sh.W, sh.Y+sh.H)
	}
}

func fontStyle(t layout.TextRun) string {
	style := ""
	if t.Bold() {
		style += "B"
	}
	if t.Italic() {
		style += "I"
	}
	return style
}

// drawStyle maps stroke and fill presence to the fpdf style string.
func drawStyle(sh layout.Shape) string {
	switch {
	case sh.Fill != nil && sh.Stroke != nil:
		return "FD"
	case sh.Fill != nil:
		return "F"
	default:
		return "D"
	}
}
