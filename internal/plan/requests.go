package plan

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/dshills/docspan/internal/docerr"
)

// Request builders produce the JSON mutation request objects the
// boundary collaborator dispatches as one atomic batch. All paths are
// static, so sjson errors cannot occur and are discarded.

func set(js, path string, value any) string {
	out, _ := sjson.Set(js, path, value)
	return out
}

func setRaw(js, path, raw string) string {
	out, _ := sjson.SetRaw(js, path, raw)
	return out
}

func insertTextRequest(index int, text string) string {
	js := set("", "insertText.location.index", index)
	return set(js, "insertText.text", text)
}

func deleteRangeRequest(start, end int) string {
	js := set("", "deleteContentRange.range.startIndex", start)
	return set(js, "deleteContentRange.range.endIndex", end)
}

func insertTableRequest(index, rows, columns int) string {
	js := set("", "insertTable.location.index", index)
	js = set(js, "insertTable.rows", rows)
	return set(js, "insertTable.columns", columns)
}

func insertPageBreakRequest(index int) string {
	return set("", "insertPageBreak.location.index", index)
}

func replaceAllTextRequest(find, replace string, matchCase bool) string {
	js := set("", "replaceAllText.containsText.text", find)
	js = set(js, "replaceAllText.containsText.matchCase", matchCase)
	return set(js, "replaceAllText.replaceText", replace)
}

func bulletListRequest(start, end int, numbered bool) string {
	preset := "BULLET_DISC_CIRCLE_SQUARE"
	if numbered {
		preset = "NUMBERED_DECIMAL_ALPHA_ROMAN"
	}
	js := set("", "createParagraphBullets.range.startIndex", start)
	js = set(js, "createParagraphBullets.range.endIndex", end)
	return set(js, "createParagraphBullets.bulletPreset", preset)
}

// textStyleRequest builds an updateTextStyle request covering the
// text-level fields of st. Returns "" when st carries none.
func textStyleRequest(start, end int, st Style) (string, error) {
	if !st.hasTextStyle() {
		return "", nil
	}
	js := set("", "updateTextStyle.range.startIndex", start)
	js = set(js, "updateTextStyle.range.endIndex", end)

	var fields []string
	if st.Bold != nil {
		js = set(js, "updateTextStyle.textStyle.bold", *st.Bold)
		fields = append(fields, "bold")
	}
	if st.Italic != nil {
		js = set(js, "updateTextStyle.textStyle.italic", *st.Italic)
		fields = append(fields, "italic")
	}
	if st.Underline != nil {
		js = set(js, "updateTextStyle.textStyle.underline", *st.Underline)
		fields = append(fields, "underline")
	}
	if st.Strikethrough != nil {
		js = set(js, "updateTextStyle.textStyle.strikethrough", *st.Strikethrough)
		fields = append(fields, "strikethrough")
	}
	if st.FontSize != nil {
		js = set(js, "updateTextStyle.textStyle.fontSize.magnitude", *st.FontSize)
		js = set(js, "updateTextStyle.textStyle.fontSize.unit", "PT")
		fields = append(fields, "fontSize")
	}
	if st.FontFamily != nil {
		js = set(js, "updateTextStyle.textStyle.weightedFontFamily.fontFamily", *st.FontFamily)
		fields = append(fields, "weightedFontFamily")
	}
	if st.Link != nil {
		if *st.Link == "" {
			// Empty string removes an existing link.
			js = setRaw(js, "updateTextStyle.textStyle.link", "null")
		} else {
			js = set(js, "updateTextStyle.textStyle.link.url", *st.Link)
		}
		fields = append(fields, "link")
	}
	if st.ForegroundColor != nil {
		raw, err := colorJSON(*st.ForegroundColor)
		if err != nil {
			return "", err
		}
		js = setRaw(js, "updateTextStyle.textStyle.foregroundColor", raw)
		fields = append(fields, "foregroundColor")
	}
	if st.BackgroundColor != nil {
		raw, err := colorJSON(*st.BackgroundColor)
		if err != nil {
			return "", err
		}
		js = setRaw(js, "updateTextStyle.textStyle.backgroundColor", raw)
		fields = append(fields, "backgroundColor")
	}
	return set(js, "updateTextStyle.fields", strings.Join(fields, ",")), nil
}

var namedStyles = map[string]bool{
	"NORMAL_TEXT": true, "TITLE": true, "SUBTITLE": true,
	"HEADING_1": true, "HEADING_2": true, "HEADING_3": true,
	"HEADING_4": true, "HEADING_5": true, "HEADING_6": true,
}

var alignments = map[string]bool{
	"START": true, "CENTER": true, "END": true, "JUSTIFIED": true,
}

// paragraphStyleRequest builds an updateParagraphStyle request
// covering the paragraph-level fields of st. Returns "" when st
// carries none.
func paragraphStyleRequest(start, end int, st Style) (string, error) {
	if !st.hasParagraphStyle() {
		return "", nil
	}
	js := set("", "updateParagraphStyle.range.startIndex", start)
	js = set(js, "updateParagraphStyle.range.endIndex", end)

	var fields []string
	if st.HeadingStyle != nil {
		name := strings.ToUpper(*st.HeadingStyle)
		if !namedStyles[name] {
			return "", docerr.InvalidParam("heading_style", *st.HeadingStyle,
				[]string{"NORMAL_TEXT", "TITLE", "SUBTITLE", "HEADING_1", "HEADING_2", "HEADING_3", "HEADING_4", "HEADING_5", "HEADING_6"})
		}
		js = set(js, "updateParagraphStyle.paragraphStyle.namedStyleType", name)
		fields = append(fields, "namedStyleType")
	}
	if st.Alignment != nil {
		name := strings.ToUpper(*st.Alignment)
		if !alignments[name] {
			return "", docerr.InvalidParam("alignment", *st.Alignment,
				[]string{"START", "CENTER", "END", "JUSTIFIED"})
		}
		js = set(js, "updateParagraphStyle.paragraphStyle.alignment", name)
		fields = append(fields, "alignment")
	}
	if st.LineSpacing != nil {
		// The API expects a percentage: 1.5 line spacing = 150.
		js = set(js, "updateParagraphStyle.paragraphStyle.lineSpacing", *st.LineSpacing*100)
		fields = append(fields, "lineSpacing")
	}
	return set(js, "updateParagraphStyle.fields", strings.Join(fields, ",")), nil
}

func namedStyleRequest(start, end int, style string) string {
	js := set("", "updateParagraphStyle.range.startIndex", start)
	js = set(js, "updateParagraphStyle.range.endIndex", end)
	js = set(js, "updateParagraphStyle.paragraphStyle.namedStyleType", style)
	return set(js, "updateParagraphStyle.fields", "namedStyleType")
}

var namedColors = map[string][3]float64{
	"red":    {1, 0, 0},
	"green":  {0, 1, 0},
	"blue":   {0, 0, 1},
	"yellow": {1, 1, 0},
	"orange": {1, 0.65, 0},
	"purple": {0.5, 0, 0.5},
	"black":  {0, 0, 0},
	"white":  {1, 1, 1},
	"gray":   {0.5, 0.5, 0.5},
	"grey":   {0.5, 0.5, 0.5},
}

// colorJSON converts a hex (#RGB or #RRGGBB) or named color into the
// rgbColor JSON fragment used by style requests.
func colorJSON(color string) (string, error) {
	var r, g, b float64
	switch {
	case strings.HasPrefix(color, "#"):
		hex := strings.TrimPrefix(color, "#")
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return "", docerr.New(docerr.CodeInvalidParamValue, "invalid hex color '%s'", color)
		}
		var ri, gi, bi int
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &ri, &gi, &bi); err != nil {
			return "", docerr.New(docerr.CodeInvalidParamValue, "invalid hex color '%s'", color)
		}
		r, g, b = float64(ri)/255, float64(gi)/255, float64(bi)/255
	default:
		rgb, ok := namedColors[strings.ToLower(color)]
		if !ok {
			return "", docerr.New(docerr.CodeInvalidParamValue,
				"unknown color '%s'. Use hex (#FF0000) or a named color", color)
		}
		r, g, b = rgb[0], rgb[1], rgb[2]
	}
	js := set("", "color.rgbColor.red", r)
	js = set(js, "color.rgbColor.green", g)
	return set(js, "color.rgbColor.blue", b), nil
}
