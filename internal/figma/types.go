package figma

import "encoding/json"

// Node is one element of a Figma document tree. Only the fields the gateway
// inspects are decoded; everything else rides along in the raw payload.
type Node struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Type                  string     `json:"type"`
	Characters            string     `json:"characters,omitempty"`
	AbsoluteBoundingBox   *Rect      `json:"absoluteBoundingBox,omitempty"`
	Fills                 []Paint    `json:"fills,omitempty"`
	Strokes               []Paint    `json:"strokes,omitempty"`
	StrokeWeight          float64    `json:"strokeWeight,omitempty"`
	CornerRadius          float64    `json:"cornerRadius,omitempty"`
	Opacity               *float64   `json:"opacity,omitempty"`
	Style                 *TypeStyle `json:"style,omitempty"`
	LayoutMode            string     `json:"layoutMode,omitempty"`
	PrimaryAxisAlignItems string     `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlignItems string     `json:"counterAxisAlignItems,omitempty"`
	ItemSpacing           float64    `json:"itemSpacing,omitempty"`
	PaddingLeft           float64    `json:"paddingLeft,omitempty"`
	PaddingRight          float64    `json:"paddingRight,omitempty"`
	PaddingTop            float64    `json:"paddingTop,omitempty"`
	PaddingBottom         float64    `json:"paddingBottom,omitempty"`
	Children              []Node     `json:"children,omitempty"`
}

// Rect is an absolute bounding box in canvas coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Paint is a fill or stroke entry. Visible defaults to true when absent.
type Paint struct {
	Type    string   `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Color   *Color   `json:"color,omitempty"`
}

// IsVisible reports whether the paint should be rendered.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// Color is an RGBA color with 0-1 channel values.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// TypeStyle carries the text styling attributes of a TEXT node.
type TypeStyle struct {
	FontFamily          string  `json:"fontFamily,omitempty"`
	FontSize            float64 `json:"fontSize,omitempty"`
	FontWeight          float64 `json:"fontWeight,omitempty"`
	LetterSpacing       float64 `json:"letterSpacing,omitempty"`
	LineHeightPx        float64 `json:"lineHeightPx,omitempty"`
	TextAlignHorizontal string  `json:"textAlignHorizontal,omitempty"`
}

// NodesResponse is the result of a file nodes fetch. Raw preserves the
// undecoded upstream payload for passthrough tools.
type NodesResponse struct {
	Name  string               `json:"name"`
	Nodes map[string]NodeEntry `json:"nodes"`
	Raw   json.RawMessage      `json:"-"`
}

// NodeEntry wraps one requested node id in a nodes response.
type NodeEntry struct {
	Document Node `json:"document"`
}

// ImagesResponse is the result of an image rendering fetch. Images maps node
// id to a rendered image URL; the URL may be empty when rendering failed.
type ImagesResponse struct {
	Err    string            `json:"err,omitempty"`
	Images map[string]string `json:"images"`
}

// VariablesResponse is the result of a local variables fetch.
type VariablesResponse struct {
	Meta VariablesMeta   `json:"meta"`
	Raw  json.RawMessage `json:"-"`
}

// VariablesMeta holds the variable and collection tables.
type VariablesMeta struct {
	Variables           map[string]json.RawMessage `json:"variables"`
	VariableCollections map[string]json.RawMessage `json:"variableCollections"`
}

// Empty reports whether the file defines no variables at all.
func (m VariablesMeta) Empty() bool {
	return len(m.Variables) == 0 && len(m.VariableCollections) == 0
}

// User is the identity behind an access token.
type User struct {
	ID     string          `json:"id"`
	Handle string          `json:"handle"`
	Email  string          `json:"email"`
	ImgURL string          `json:"img_url,omitempty"`
	Raw    json.RawMessage `json:"-"`
}
