package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated scheme.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "spiral.twin.phase")
// to their [FieldDoc] entries. Array-of-table fields use the array name as
// prefix ("layers.angle").
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Scheme file schema version. Do not edit.",
	},

	// ── Output ───────────────────────────────────────────────────
	"output": {
		Comment: "Images are written to <dir>/<scheme>_<locale>.png",
	},
	"output.dir":    {},
	"output.scheme": {},
	"output.locales": {
		Comment: "Locales rendered when -locale is not given. Glob patterns are allowed.",
		Alternatives: []string{
			`locales = ["*"]`,
			`locales = ["en"]`,
		},
	},
	"output.locales_file": {
		Comment: "Text bundle replacing the built-in en/ru strings (same format as locales.toml).",
		Alternatives: []string{
			`locales_file = "my-locales.toml"`,
		},
	},

	// ── Canvas ───────────────────────────────────────────────────
	"canvas": {
		Comment: "Pixel size and the data range mapped onto it.\nThe view box is scaled uniformly (equal aspect) and centered inside the margin.",
	},
	"canvas.width":  {},
	"canvas.height": {},
	"canvas.dpi": {
		Comment: "Point sizes (fonts, line widths) are converted with this density.",
	},
	"canvas.margin": {},
	"canvas.x_min":  {},
	"canvas.x_max":  {},
	"canvas.y_min":  {},
	"canvas.y_max":  {},

	// ── Palette ──────────────────────────────────────────────────
	"palette": {
		Comment: "Colors as #RGB, #RRGGBB or #RRGGBBAA.",
	},
	"palette.background":      {},
	"palette.accent":          {},
	"palette.line":            {},
	"palette.text":            {},
	"palette.box_fill":        {},
	"palette.box_edge":        {},
	"palette.subtext_opacity": {},

	// ── Center ───────────────────────────────────────────────────
	"center": {
		Comment: "Common center of the rings, the spiral and the emblem.",
	},
	"center.x": {},
	"center.y": {},

	// ── Rings ────────────────────────────────────────────────────
	"rings": {
		Comment: "Layer rings, innermost first: Organism, Rhythm, Meaning, Environment.",
	},
	"rings.radii": {},
	"rings.fill_opacity": {
		Comment: "Accent tint of each ring's disc. Empty disables the tint.",
	},
	"rings.line_width": {},
	"rings.opacity":    {},

	// ── Spiral ───────────────────────────────────────────────────
	"spiral": {
		Comment: "Logarithmic spiral r = a * e^(b * theta), theta in [0, theta_max_pi * pi].",
	},
	"spiral.a":            {},
	"spiral.b":            {},
	"spiral.theta_max_pi": {},
	"spiral.points":       {},
	"spiral.line_width":   {},
	"spiral.opacity":      {},
	"spiral.halo_width": {
		Comment: "Background-colored outline drawn under the spiral. 0 disables it.",
	},
	"spiral.halo_opacity": {},
	"spiral.twin": {
		Comment: "A second spiral rotated by phase radians and scaled, for depth.",
	},
	"spiral.twin.enabled": {
		Alternatives: []string{
			`enabled = true`,
		},
	},
	"spiral.twin.phase":      {},
	"spiral.twin.scale":      {},
	"spiral.twin.line_width": {},
	"spiral.twin.opacity":    {},

	// ── Wave ─────────────────────────────────────────────────────
	"wave": {
		Comment: "y = amplitude * sin(frequency * x) + lift, x in [x_min, x_max], relative to the center.",
	},
	"wave.enabled":    {},
	"wave.x_min":      {},
	"wave.x_max":      {},
	"wave.amplitude":  {},
	"wave.frequency":  {},
	"wave.lift":       {},
	"wave.points":     {},
	"wave.line_width": {},
	"wave.opacity":    {},

	// ── Emblem ───────────────────────────────────────────────────
	"emblem": {
		Comment: "Disc, inscribed triangle, inner circle, mark text and caption.",
	},
	"emblem.disc_radius":         {},
	"emblem.disc_line_width":     {},
	"emblem.triangle_radius":     {},
	"emblem.triangle_line_width": {},
	"emblem.inner_radius":        {},
	"emblem.inner_line_width":    {},
	"emblem.mark":                {},
	"emblem.mark_size":           {},
	"emblem.caption_offset": {
		Comment: "Distance below the center of the caption's top edge.",
	},
	"emblem.caption_size":    {},
	"emblem.caption_opacity": {},

	// ── Boxes ────────────────────────────────────────────────────
	"boxes": {
		Comment: "Label boxes sit offset beyond their ring along the layer's angle.\nBoxes on the right half grow rightward, the others leftward.",
	},
	"boxes.offset":            {},
	"boxes.width":             {},
	"boxes.height":            {},
	"boxes.inset":             {},
	"boxes.pad":               {},
	"boxes.text_inset":        {},
	"boxes.title_drop":        {},
	"boxes.subtitle_drop":     {},
	"boxes.line_width":        {},
	"boxes.opacity":           {},
	"boxes.title_size":        {},
	"boxes.subtitle_size":     {},
	"boxes.dot_radius":        {},
	"boxes.dot_line_width":    {},
	"boxes.connector_width":   {},
	"boxes.connector_opacity": {},

	// ── Title ────────────────────────────────────────────────────
	"title": {
		Comment: "Heading. y values are fractions of the view box height from its bottom.",
	},
	"title.size":             {},
	"title.y":                {},
	"title.opacity":          {},
	"title.subtitle_size":    {},
	"title.subtitle_y":       {},
	"title.subtitle_opacity": {},

	// ── Fonts ────────────────────────────────────────────────────
	"fonts": {
		Comment: "Empty uses the built-in Go fonts, which cover Latin and Cyrillic.",
	},
	"fonts.regular": {
		Alternatives: []string{
			`regular = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"`,
			`regular = "google:Inter:400"`,
		},
	},
	"fonts.bold": {
		Alternatives: []string{
			`bold = "google:Inter:700"`,
		},
	},
	"fonts.cache_dir": {
		Comment: "Where downloaded fonts are cached. Empty uses the user cache directory.",
		Alternatives: []string{
			`cache_dir = ".fonts"`,
		},
	},

	// ── Log ──────────────────────────────────────────────────────
	"log.level": {
		Comment: "Log level: trace, debug, info, warn, error",
	},
	"log.file": {
		Comment: "Also write the log to this rotating file.",
		Alternatives: []string{
			`file = "eqscheme.log"`,
		},
	},
	"log.max_size_mb": {},

	// ── Layers ───────────────────────────────────────────────────
	"layers": {
		Comment: "One label box per layer; all four keys (org, rh, me, env) are required.\nkey selects the texts, ring the ring index, angle the direction in degrees.\nwidth and height override the [boxes] size for one layer.",
	},
	"layers.key":    {},
	"layers.ring":   {},
	"layers.angle":  {},
	"layers.width":  {},
	"layers.height": {},
}
