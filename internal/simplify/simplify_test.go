package simplify

import (
	"fmt"
	"testing"

	"github.com/figbridge/figbridge/internal/figma"
)

func chain(depth int) *figma.Node {
	n := &figma.Node{ID: fmt.Sprintf("d%d", depth), Name: "leaf", Type: "FRAME"}
	for i := depth - 1; i >= 0; i-- {
		n = &figma.Node{ID: fmt.Sprintf("d%d", i), Name: "level", Type: "FRAME", Children: []figma.Node{*n}}
	}
	return n
}

func maxDepthOf(n *Node) int {
	deepest := 0
	for _, c := range n.Children {
		if d := maxDepthOf(c) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

func TestSimplifyHonorsDepthBound(t *testing.T) {
	root := chain(6)
	got := Simplify(root, Options{MaxDepth: 2})
	if d := maxDepthOf(got); d > 2 {
		t.Fatalf("result depth %d exceeds bound 2", d)
	}
	cut := got.Children[0].Children[0]
	if len(cut.Children) != 0 {
		t.Fatalf("node at depth bound materialized %d children", len(cut.Children))
	}
	if cut.ChildCount != 1 {
		t.Fatalf("expected childCount 1 at depth bound, got %d", cut.ChildCount)
	}
	if cut.Note == "" {
		t.Fatal("expected explanatory note at depth bound")
	}
}

func TestSimplifyCapsFanOut(t *testing.T) {
	root := &figma.Node{ID: "root", Name: "grid", Type: "FRAME"}
	for i := 0; i < 25; i++ {
		root.Children = append(root.Children, figma.Node{ID: fmt.Sprintf("c%d", i), Name: "cell", Type: "RECTANGLE"})
	}
	got := Simplify(root, Options{MaxDepth: 3})
	if len(got.Children) != FanOutCap {
		t.Fatalf("expected %d materialized children, got %d", FanOutCap, len(got.Children))
	}
	if !got.Truncated {
		t.Fatal("expected truncation flag")
	}
	if got.ChildCount != 25 {
		t.Fatalf("expected true child count 25, got %d", got.ChildCount)
	}
	if got.Children[0].ID != "c0" || got.Children[19].ID != "c19" {
		t.Fatalf("children out of order: first %s last %s", got.Children[0].ID, got.Children[19].ID)
	}
}

func TestCSSColor(t *testing.T) {
	if got := CSSColor(figma.Color{R: 1, G: 0, B: 0, A: 1}); got != "#ff0000" {
		t.Fatalf("opaque red: %s", got)
	}
	if got := CSSColor(figma.Color{R: 1, G: 0, B: 0, A: 0.5}); got != "rgba(255, 0, 0, 0.50)" {
		t.Fatalf("translucent red: %s", got)
	}
	if got := CSSColor(figma.Color{R: 0.5, G: 0.25, B: 0.75, A: 1}); got != "#7f3fbf" {
		t.Fatalf("channels must truncate: %s", got)
	}
}

func TestSimplifyHeadingText(t *testing.T) {
	n := &figma.Node{ID: "1:1", Name: "Heading", Type: "TEXT", Characters: "Hello"}
	got := Simplify(n, Options{})
	if got.Tag != "h2" {
		t.Fatalf("expected h2, got %s", got.Tag)
	}
	if got.Text != "Hello" {
		t.Fatalf("expected text Hello, got %q", got.Text)
	}
}

func TestInferTag(t *testing.T) {
	cases := []struct {
		name     string
		nodeType string
		want     string
	}{
		{"Page Subtitle", "TEXT", "h3"},
		{"Hero Title", "TEXT", "h2"},
		{"Main Heading", "TEXT", "h2"},
		{"Button Label", "TEXT", "button"},
		{"Body Copy", "TEXT", "p"},
		{"Login Button", "FRAME", "button"},
		{"Email Field", "FRAME", "input"},
		{"Search Input", "FRAME", "input"},
		{"Nav Bar", "FRAME", "nav"},
		{"Dropdown Menu", "FRAME", "nav"},
		{"Page Header", "FRAME", "header"},
		{"Site Footer", "FRAME", "footer"},
		{"Card", "FRAME", "div"},
		{"Shape", "RECTANGLE", "div"},
	}
	for _, tc := range cases {
		n := &figma.Node{Name: tc.name, Type: tc.nodeType}
		if got := inferTag(n); got != tc.want {
			t.Errorf("inferTag(%q %s) = %s, want %s", tc.name, tc.nodeType, got, tc.want)
		}
	}
}

func TestResolveStylesPaintAndShape(t *testing.T) {
	opacity := 0.8
	n := &figma.Node{
		ID:   "n",
		Name: "Card",
		Type: "FRAME",
		Fills: []figma.Paint{
			{Type: "IMAGE"},
			{Type: "SOLID", Color: &figma.Color{R: 1, G: 1, B: 1, A: 1}},
		},
		Strokes:      []figma.Paint{{Type: "SOLID", Color: &figma.Color{R: 0, G: 0, B: 0, A: 1}}},
		StrokeWeight: 2,
		CornerRadius: 8,
		Opacity:      &opacity,
	}
	styles := resolveStyles(n)
	if styles["backgroundColor"] != "#ffffff" {
		t.Fatalf("backgroundColor: %s", styles["backgroundColor"])
	}
	if styles["border"] != "2px solid #000000" {
		t.Fatalf("border: %s", styles["border"])
	}
	if styles["borderRadius"] != "8px" {
		t.Fatalf("borderRadius: %s", styles["borderRadius"])
	}
	if styles["opacity"] != "0.8" {
		t.Fatalf("opacity: %s", styles["opacity"])
	}
}

func TestResolveStylesSkipsInvisibleFill(t *testing.T) {
	hidden := false
	n := &figma.Node{
		Name: "Panel",
		Type: "FRAME",
		Fills: []figma.Paint{
			{Type: "SOLID", Visible: &hidden, Color: &figma.Color{R: 1, G: 0, B: 0, A: 1}},
			{Type: "SOLID", Color: &figma.Color{R: 0, G: 1, B: 0, A: 1}},
		},
	}
	styles := resolveStyles(n)
	if styles["backgroundColor"] != "#00ff00" {
		t.Fatalf("expected second fill to win, got %s", styles["backgroundColor"])
	}
}

func TestResolveStylesTypography(t *testing.T) {
	n := &figma.Node{
		Name: "Body",
		Type: "TEXT",
		Style: &figma.TypeStyle{
			FontFamily:          "Inter",
			FontSize:            16,
			FontWeight:          500,
			LetterSpacing:       0.5,
			LineHeightPx:        24,
			TextAlignHorizontal: "CENTER",
		},
	}
	styles := resolveStyles(n)
	want := map[string]string{
		"fontFamily":    "Inter",
		"fontSize":      "16px",
		"fontWeight":    "500",
		"letterSpacing": "0.5px",
		"lineHeight":    "24px",
		"textAlign":     "center",
	}
	for k, v := range want {
		if styles[k] != v {
			t.Errorf("%s: got %q, want %q", k, styles[k], v)
		}
	}

	n.Style.TextAlignHorizontal = ""
	if styles = resolveStyles(n); styles["textAlign"] != "left" {
		t.Fatalf("default alignment should be left, got %s", styles["textAlign"])
	}
}

func TestResolveStylesAutoLayout(t *testing.T) {
	n := &figma.Node{
		Name:                  "Row",
		Type:                  "FRAME",
		LayoutMode:            "HORIZONTAL",
		PrimaryAxisAlignItems: "SPACE_BETWEEN",
		CounterAxisAlignItems: "CENTER",
		ItemSpacing:           12,
		PaddingTop:            8,
		PaddingRight:          16,
		PaddingBottom:         8,
		PaddingLeft:           16,
	}
	styles := resolveStyles(n)
	if styles["display"] != "flex" || styles["flexDirection"] != "row" {
		t.Fatalf("flex mapping: %v", styles)
	}
	if styles["justifyContent"] != "space_between" {
		t.Fatalf("justifyContent: %s", styles["justifyContent"])
	}
	if styles["alignItems"] != "center" {
		t.Fatalf("alignItems: %s", styles["alignItems"])
	}
	if styles["gap"] != "12px" {
		t.Fatalf("gap: %s", styles["gap"])
	}
	if styles["padding"] != "8px 16px 8px 16px" {
		t.Fatalf("padding: %s", styles["padding"])
	}

	n.LayoutMode = "VERTICAL"
	if styles = resolveStyles(n); styles["flexDirection"] != "column" {
		t.Fatalf("vertical should map to column, got %s", styles["flexDirection"])
	}
}

func TestSimplifyAttachesImages(t *testing.T) {
	n := &figma.Node{ID: "1:2", Name: "Hero", Type: "FRAME"}
	got := Simplify(n, Options{IncludeImages: true, Images: map[string]string{"1:2": "https://img.example/hero.png"}})
	if got.ImageURL != "https://img.example/hero.png" {
		t.Fatalf("imageUrl: %s", got.ImageURL)
	}

	got = Simplify(n, Options{Images: map[string]string{"1:2": "https://img.example/hero.png"}})
	if got.ImageURL != "" {
		t.Fatal("imageUrl should be empty when images are not requested")
	}
}
