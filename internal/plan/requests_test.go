package plan

import (
	"errors"
	"math"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/docspan/internal/docerr"
)

func TestTextStyleRequestFields(t *testing.T) {
	st := Style{
		Bold:       boolPtr(true),
		Italic:     boolPtr(false),
		FontSize:   intPtr(14),
		FontFamily: strPtr("Courier New"),
		Link:       strPtr("https://example.com"),
	}
	js, err := textStyleRequest(5, 12, st)
	if err != nil {
		t.Fatalf("textStyleRequest: %v", err)
	}
	req := gjson.Parse(js)
	if req.Get("updateTextStyle.range.startIndex").Int() != 5 ||
		req.Get("updateTextStyle.range.endIndex").Int() != 12 {
		t.Errorf("range wrong: %s", js)
	}
	if !req.Get("updateTextStyle.textStyle.bold").Bool() {
		t.Errorf("bold not set")
	}
	// italic=false still counts as an explicit clear.
	if req.Get("updateTextStyle.textStyle.italic").Bool() {
		t.Errorf("italic should be false")
	}
	if req.Get("updateTextStyle.textStyle.fontSize.magnitude").Int() != 14 ||
		req.Get("updateTextStyle.textStyle.fontSize.unit").String() != "PT" {
		t.Errorf("fontSize wrong: %s", js)
	}
	if req.Get("updateTextStyle.textStyle.weightedFontFamily.fontFamily").String() != "Courier New" {
		t.Errorf("font family wrong: %s", js)
	}
	fields := req.Get("updateTextStyle.fields").String()
	if fields != "bold,italic,fontSize,weightedFontFamily,link" {
		t.Errorf("fields = %q", fields)
	}
}

func TestTextStyleRequestEmpty(t *testing.T) {
	js, err := textStyleRequest(1, 2, Style{})
	if err != nil || js != "" {
		t.Errorf("empty style should build nothing, got %q err %v", js, err)
	}
}

func TestTextStyleRequestLinkRemoval(t *testing.T) {
	js, err := textStyleRequest(1, 5, Style{Link: strPtr("")})
	if err != nil {
		t.Fatalf("textStyleRequest: %v", err)
	}
	link := gjson.Parse(js).Get("updateTextStyle.textStyle.link")
	if link.Type != gjson.Null {
		t.Errorf("empty link should serialize as null, got %s", link.Raw)
	}
}

func TestColorJSON(t *testing.T) {
	tests := []struct {
		color   string
		r, g, b float64
	}{
		{"#FF0000", 1, 0, 0},
		{"#f00", 1, 0, 0},
		{"#0080FF", 0, 128.0 / 255, 1},
		{"blue", 0, 0, 1},
		{"Orange", 1, 0.65, 0},
	}
	for _, tc := range tests {
		raw, err := colorJSON(tc.color)
		if err != nil {
			t.Errorf("colorJSON(%q): %v", tc.color, err)
			continue
		}
		c := gjson.Parse(raw).Get("color.rgbColor")
		if math.Abs(c.Get("red").Float()-tc.r) > 1e-9 ||
			math.Abs(c.Get("green").Float()-tc.g) > 1e-9 ||
			math.Abs(c.Get("blue").Float()-tc.b) > 1e-9 {
			t.Errorf("colorJSON(%q) = %s", tc.color, raw)
		}
	}
}

func TestColorJSONInvalid(t *testing.T) {
	for _, color := range []string{"#12345", "chartreuse-ish", "#GGGGGG"} {
		_, err := colorJSON(color)
		if !errors.Is(err, &docerr.Error{Code: docerr.CodeInvalidParamValue}) {
			t.Errorf("colorJSON(%q) err = %v, want INVALID_PARAM_VALUE", color, err)
		}
	}
}

func TestParagraphStyleRequest(t *testing.T) {
	st := Style{
		HeadingStyle: strPtr("heading_2"),
		Alignment:    strPtr("center"),
		LineSpacing:  float64Ptr(1.5),
	}
	js, err := paragraphStyleRequest(10, 30, st)
	if err != nil {
		t.Fatalf("paragraphStyleRequest: %v", err)
	}
	req := gjson.Parse(js)
	if req.Get("updateParagraphStyle.paragraphStyle.namedStyleType").String() != "HEADING_2" {
		t.Errorf("namedStyleType wrong: %s", js)
	}
	if req.Get("updateParagraphStyle.paragraphStyle.alignment").String() != "CENTER" {
		t.Errorf("alignment wrong: %s", js)
	}
	if req.Get("updateParagraphStyle.paragraphStyle.lineSpacing").Float() != 150 {
		t.Errorf("lineSpacing wrong: %s", js)
	}
	if req.Get("updateParagraphStyle.fields").String() != "namedStyleType,alignment,lineSpacing" {
		t.Errorf("fields = %q", req.Get("updateParagraphStyle.fields").String())
	}
}

func TestParagraphStyleRequestInvalidHeading(t *testing.T) {
	_, err := paragraphStyleRequest(1, 2, Style{HeadingStyle: strPtr("HEADING_9")})
	if !errors.Is(err, &docerr.Error{Code: docerr.CodeInvalidParamValue}) {
		t.Errorf("err = %v, want INVALID_PARAM_VALUE", err)
	}
}

func TestBulletListRequest(t *testing.T) {
	req := gjson.Parse(bulletListRequest(4, 20, true))
	if req.Get("createParagraphBullets.bulletPreset").String() != "NUMBERED_DECIMAL_ALPHA_ROMAN" {
		t.Errorf("numbered preset wrong")
	}
	req = gjson.Parse(bulletListRequest(4, 20, false))
	if req.Get("createParagraphBullets.bulletPreset").String() != "BULLET_DISC_CIRCLE_SQUARE" {
		t.Errorf("bullet preset wrong")
	}
	if req.Get("createParagraphBullets.range.startIndex").Int() != 4 {
		t.Errorf("range wrong")
	}
}

func TestSimpleRequests(t *testing.T) {
	ins := gjson.Parse(insertTextRequest(7, "hi"))
	if ins.Get("insertText.location.index").Int() != 7 || ins.Get("insertText.text").String() != "hi" {
		t.Errorf("insertText: %s", ins.Raw)
	}
	tbl := gjson.Parse(insertTableRequest(9, 2, 3))
	if tbl.Get("insertTable.rows").Int() != 2 || tbl.Get("insertTable.columns").Int() != 3 {
		t.Errorf("insertTable: %s", tbl.Raw)
	}
	pb := gjson.Parse(insertPageBreakRequest(11))
	if pb.Get("insertPageBreak.location.index").Int() != 11 {
		t.Errorf("insertPageBreak: %s", pb.Raw)
	}
}
