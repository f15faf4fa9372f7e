package simplify

import (
	"fmt"
	"strings"

	"github.com/figbridge/figbridge/internal/figma"
)

const (
	// FanOutCap bounds how many children of one node are materialized.
	FanOutCap = 20

	// DefaultMaxDepth bounds recursion when the caller does not set one.
	DefaultMaxDepth = 10
)

// Options controls one simplification pass.
type Options struct {
	// IncludeImages attaches rendered image URLs from Images to matching nodes.
	IncludeImages bool
	// Images maps node id to a rendered image URL.
	Images map[string]string
	// MaxDepth bounds recursion depth; 0 selects DefaultMaxDepth.
	MaxDepth int
}

// Node is the bounded, style-annotated projection of a document subtree.
type Node struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Tag      string            `json:"tag"`
	Layout   *Box              `json:"layout,omitempty"`
	Styles   map[string]string `json:"styles,omitempty"`
	Text     string            `json:"text,omitempty"`
	ImageURL string            `json:"imageUrl,omitempty"`
	Children []*Node           `json:"children,omitempty"`

	// Truncated marks that more children exist than were materialized;
	// ChildCount then carries the true total. At the depth bound no
	// children are materialized at all and Note explains why.
	Truncated  bool   `json:"truncated,omitempty"`
	ChildCount int    `json:"childCount,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Box is a CSS-ready layout rectangle.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Simplify projects an upstream document subtree into a bounded Node tree.
// The result never exceeds opts.MaxDepth levels and no node materializes
// more than FanOutCap children, so the transform terminates in time bounded
// by cap^depth regardless of how large the source document claims to be.
func Simplify(n *figma.Node, opts Options) *Node {
	if n == nil {
		return nil
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return simplifyAt(n, opts, 0)
}

func simplifyAt(n *figma.Node, opts Options, depth int) *Node {
	out := &Node{
		ID:     n.ID,
		Name:   n.Name,
		Type:   n.Type,
		Tag:    inferTag(n),
		Styles: resolveStyles(n),
	}
	if n.AbsoluteBoundingBox != nil {
		b := *n.AbsoluteBoundingBox
		out.Layout = &Box{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
	}
	if n.Type == "TEXT" {
		out.Text = n.Characters
	}
	if opts.IncludeImages {
		if u := opts.Images[n.ID]; u != "" {
			out.ImageURL = u
		}
	}

	if len(n.Children) == 0 {
		return out
	}
	if depth >= opts.MaxDepth {
		out.ChildCount = len(n.Children)
		out.Note = fmt.Sprintf("%d children omitted beyond depth limit", len(n.Children))
		return out
	}
	kids := n.Children
	if len(kids) > FanOutCap {
		out.Truncated = true
		out.ChildCount = len(kids)
		kids = kids[:FanOutCap]
	}
	out.Children = make([]*Node, 0, len(kids))
	for i := range kids {
		out.Children = append(out.Children, simplifyAt(&kids[i], opts, depth+1))
	}
	return out
}

// inferTag picks a markup tag from node type and name. TEXT naming wins over
// generic name matches; layout containers and everything unmatched become div.
func inferTag(n *figma.Node) string {
	name := strings.ToLower(n.Name)
	if n.Type == "TEXT" {
		switch {
		case strings.Contains(name, "subtitle"):
			return "h3"
		case strings.Contains(name, "heading"), strings.Contains(name, "title"):
			return "h2"
		case strings.Contains(name, "button"):
			return "button"
		default:
			return "p"
		}
	}
	switch {
	case strings.Contains(name, "button"):
		return "button"
	case strings.Contains(name, "input"), strings.Contains(name, "field"):
		return "input"
	case strings.Contains(name, "nav"), strings.Contains(name, "menu"):
		return "nav"
	case strings.Contains(name, "header"):
		return "header"
	case strings.Contains(name, "footer"):
		return "footer"
	default:
		return "div"
	}
}

// resolveStyles flattens paints, typography and auto-layout into CSS-ready
// key/value pairs.
func resolveStyles(n *figma.Node) map[string]string {
	styles := map[string]string{}

	if p, ok := firstVisibleSolid(n.Fills); ok {
		styles["backgroundColor"] = CSSColor(*p.Color)
	}
	if p, ok := firstVisibleSolid(n.Strokes); ok {
		styles["border"] = fmt.Sprintf("%gpx solid %s", n.StrokeWeight, CSSColor(*p.Color))
	}
	if n.CornerRadius > 0 {
		styles["borderRadius"] = fmt.Sprintf("%gpx", n.CornerRadius)
	}
	if n.Opacity != nil && *n.Opacity < 1 {
		styles["opacity"] = fmt.Sprintf("%g", *n.Opacity)
	}

	if n.Type == "TEXT" && n.Style != nil {
		s := n.Style
		if s.FontFamily != "" {
			styles["fontFamily"] = s.FontFamily
		}
		if s.FontSize > 0 {
			styles["fontSize"] = fmt.Sprintf("%gpx", s.FontSize)
		}
		if s.FontWeight > 0 {
			styles["fontWeight"] = fmt.Sprintf("%g", s.FontWeight)
		}
		if s.LetterSpacing != 0 {
			styles["letterSpacing"] = fmt.Sprintf("%gpx", s.LetterSpacing)
		}
		if s.LineHeightPx > 0 {
			styles["lineHeight"] = fmt.Sprintf("%gpx", s.LineHeightPx)
		}
		styles["textAlign"] = textAlign(s.TextAlignHorizontal)
	}

	if n.LayoutMode == "HORIZONTAL" || n.LayoutMode == "VERTICAL" {
		styles["display"] = "flex"
		if n.LayoutMode == "HORIZONTAL" {
			styles["flexDirection"] = "row"
		} else {
			styles["flexDirection"] = "column"
		}
		if n.PrimaryAxisAlignItems != "" {
			styles["justifyContent"] = strings.ToLower(n.PrimaryAxisAlignItems)
		}
		if n.CounterAxisAlignItems != "" {
			styles["alignItems"] = strings.ToLower(n.CounterAxisAlignItems)
		}
		if n.ItemSpacing > 0 {
			styles["gap"] = fmt.Sprintf("%gpx", n.ItemSpacing)
		}
		if n.PaddingTop != 0 || n.PaddingRight != 0 || n.PaddingBottom != 0 || n.PaddingLeft != 0 {
			styles["padding"] = fmt.Sprintf("%gpx %gpx %gpx %gpx", n.PaddingTop, n.PaddingRight, n.PaddingBottom, n.PaddingLeft)
		}
	}

	if len(styles) == 0 {
		return nil
	}
	return styles
}

func firstVisibleSolid(paints []figma.Paint) (figma.Paint, bool) {
	for _, p := range paints {
		if p.Type == "SOLID" && p.IsVisible() && p.Color != nil {
			return p, true
		}
	}
	return figma.Paint{}, false
}

// CSSColor renders a 0-1 RGBA color as CSS: #rrggbb at full alpha, otherwise
// rgba() with the alpha kept to two decimals. Channels truncate rather than
// round.
func CSSColor(c figma.Color) string {
	r := int(c.R * 255)
	g := int(c.G * 255)
	b := int(c.B * 255)
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, b, c.A)
}

func textAlign(v string) string {
	switch v {
	case "CENTER":
		return "center"
	case "RIGHT":
		return "right"
	case "JUSTIFIED":
		return "justify"
	default:
		return "left"
	}
}
