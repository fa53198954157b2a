package screen

import (
	"context"
	"html/template"
	"io"
	"strconv"
	"time"
)

var pageTemplate = template.Must(template.New("certificate").Funcs(template.FuncMap{
	"num":  func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"half": func(v float64) float64 { return v / 2 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; padding: 24px; background: #eef0f4; font-family: Helvetica, Arial, sans-serif; }
.certificate { max-width: 1188px; margin: 0 auto; box-shadow: 0 4px 24px rgba(0, 0, 0, 0.15); }
.certificate svg { display: block; width: 100%; height: auto; }
.actions { max-width: 1188px; margin: 16px auto 0; text-align: right; }
.export { display: inline-block; padding: 10px 18px; border: 0; border-radius: 4px; background: #1f2a44; color: #fff; text-decoration: none; font-size: 15px; }
.export[disabled] { background: #9aa0aa; cursor: not-allowed; }
</style>
</head>
<body>
<main>
<div class="certificate" data-certificate-id="{{.DisplayID}}">
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{num .Width}} {{num .Height}}" role="img" aria-label="{{.Title}}">
{{- range .Elements}}
{{- if .IsText}}
<text x="{{num .X}}" y="{{num .Y}}" font-family="Helvetica, Arial, sans-serif" font-size="{{num .FontSize}}" font-weight="{{.FontWeight}}" font-style="{{.FontStyle}}" text-anchor="{{.Anchor}}" fill="{{.FillCSS}}" data-role="{{.Role}}">{{.Text}}</text>
{{- else if .IsRect}}
<rect x="{{num .X}}" y="{{num .Y}}" width="{{num .W}}" height="{{num .H}}" fill="{{.FillCSS}}" stroke="{{.StrokeCSS}}" stroke-width="{{num .StrokeWidth}}" data-role="{{.Role}}"/>
{{- else if .IsCircle}}
<circle cx="{{num .X}}" cy="{{num .Y}}" r="{{num .R}}" fill="{{.FillCSS}}" stroke="{{.StrokeCSS}}" stroke-width="{{num .StrokeWidth}}" data-role="{{.Role}}"/>
{{- else if .IsLine}}
<line x1="{{num .X}}" y1="{{num .Y}}" x2="{{num .X2}}" y2="{{num .Y2}}" stroke="{{.StrokeCSS}}" stroke-width="{{num .StrokeWidth}}" data-role="{{.Role}}"/>
{{- end}}
{{- end}}
{{- with .Overlay}}
<g class="overlay" data-role="overlay">
<rect x="0" y="0" width="{{num .W}}" height="{{num .H}}" fill="{{.Fill.Hex}}" fill-opacity="1"/>
<text x="{{num (half .W)}}" y="{{num (half .H)}}" font-family="Helvetica, Arial, sans-serif" font-size="44" font-weight="bold" text-anchor="middle" fill="{{.Ink.Hex}}">{{.Title}}</text>
<text x="{{num (half .W)}}" y="{{num (half .H)}}" dy="48" font-family="Helvetica, Arial, sans-serif" font-size="22" text-anchor="middle" fill="{{.Ink.Hex}}">{{.Message}}</text>
</g>
{{- end}}
</svg>
</div>
<div class="actions">
{{- if .Export.Enabled}}
<a class="export" href="{{.Export.Href}}" download="{{.Export.Filename}}">Download PDF</a>
{{- else}}
<button class="export" type="button" disabled>Download PDF</button>
{{- end}}
</div>
</main>
</body>
</html>
`))

// WriteHTML writes the preview page.
func (r *Renderer) WriteHTML(ctx context.Context, w io.Writer, comp *Composition) error {
	start := time.Now()
	if err := pageTemplate.Execute(w, comp); err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to render certificate preview", "error", err)
		}
		return err
	}
	if r.metrics != nil {
		r.metrics.ObserveRender("html", start)
	}
	return nil
}
