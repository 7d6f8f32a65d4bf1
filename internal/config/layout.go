package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Orientation is the axis along which a group (or the workspace itself)
// arranges its children.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Dimension returns the window dimension this orientation sizes along:
// horizontal groups size widths, vertical groups size heights.
func (o Orientation) Dimension() string {
	if o == Vertical {
		return "height"
	}
	return "width"
}

// ParseOrientation validates an orientation string from config.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(s) {
	case Horizontal, Vertical:
		return Orientation(s), nil
	default:
		return "", fmt.Errorf("unknown orientation: %q (expected horizontal or vertical)", s)
	}
}

// Mode is a workspace-level tiling mode understood by the window manager.
type Mode string

const (
	ModeHTiles     Mode = "h_tiles"
	ModeVTiles     Mode = "v_tiles"
	ModeHAccordion Mode = "h_accordion"
	ModeVAccordion Mode = "v_accordion"
	ModeTiling     Mode = "tiling"
	ModeFloating   Mode = "floating"
)

// ParseMode validates a tiling mode string from config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHTiles, ModeVTiles, ModeHAccordion, ModeVAccordion, ModeTiling, ModeFloating:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown layout mode: %q (expected h_tiles, v_tiles, h_accordion, v_accordion, tiling, or floating)", s)
	}
}

// Size is a fractional size hint: the node's dimension should occupy
// Num/Den of the selected display's corresponding dimension. Sibling
// sizes are applied independently and are not required to sum to 1.
type Size struct {
	Num int
	Den int
}

// ParseSize parses a "numerator/denominator" string like "1/3".
func ParseSize(s string) (*Size, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid size %q: expected \"numerator/denominator\"", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid size %q: %w", s, err)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if num <= 0 || den <= 0 {
		return nil, fmt.Errorf("invalid size %q: numerator and denominator must be positive", s)
	}
	return &Size{Num: num, Den: den}, nil
}

func (s Size) String() string {
	return fmt.Sprintf("%d/%d", s.Num, s.Den)
}

// UnmarshalJSON parses the "n/d" wire form.
func (s *Size) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("size must be a string like \"1/3\": %w", err)
	}
	parsed, err := ParseSize(raw)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// MarshalJSON writes the "n/d" wire form.
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Node is one item of a layout tree: either a WindowNode leaf or a
// GroupNode with children. The closed set of implementations lets
// callers dispatch with a type switch instead of sniffing fields.
type Node interface {
	node()
}

// WindowNode places one application window, identified by its bundle id.
type WindowNode struct {
	BundleID string
	Size     *Size
}

// GroupNode arranges its children along an orientation.
type GroupNode struct {
	Orientation Orientation
	Size        *Size
	Windows     []Node
}

func (*WindowNode) node() {}
func (*GroupNode) node()  {}

// rawItem is the wire shape of a layout item before the window/group
// discrimination. A "windows" array marks a group; a "bundleId" marks
// a window; exactly one must be present.
type rawItem struct {
	BundleID    string            `json:"bundleId"`
	Orientation string            `json:"orientation"`
	Size        *Size             `json:"size"`
	Windows     []json.RawMessage `json:"windows"`
}

// decodeNode turns one raw JSON item into a WindowNode or GroupNode.
func decodeNode(data json.RawMessage) (Node, error) {
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if raw.Windows != nil {
		if raw.BundleID != "" {
			return nil, fmt.Errorf("layout item cannot have both bundleId %q and windows", raw.BundleID)
		}
		orient, err := ParseOrientation(raw.Orientation)
		if err != nil {
			return nil, fmt.Errorf("group: %w", err)
		}
		group := &GroupNode{Orientation: orient, Size: raw.Size}
		for i, child := range raw.Windows {
			node, err := decodeNode(child)
			if err != nil {
				return nil, fmt.Errorf("group child %d: %w", i, err)
			}
			group.Windows = append(group.Windows, node)
		}
		return group, nil
	}

	if raw.BundleID == "" {
		return nil, fmt.Errorf("layout item must have either bundleId or windows")
	}
	return &WindowNode{BundleID: raw.BundleID, Size: raw.Size}, nil
}

// Layout describes the desired state of one workspace.
type Layout struct {
	Workspace   string
	Mode        Mode
	Orientation Orientation
	Display     string
	Windows     []Node
}

// rawLayout is the wire shape of a layout before validation.
type rawLayout struct {
	Workspace   string            `json:"workspace"`
	Layout      string            `json:"layout"`
	Orientation string            `json:"orientation"`
	Display     string            `json:"display"`
	Windows     []json.RawMessage `json:"windows"`
}

// UnmarshalJSON decodes and validates a layout. workspace, layout, and
// orientation are required; windows may be empty.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var raw rawLayout
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Workspace == "" {
		return fmt.Errorf("layout is missing required field \"workspace\"")
	}
	mode, err := ParseMode(raw.Layout)
	if err != nil {
		return err
	}
	orient, err := ParseOrientation(raw.Orientation)
	if err != nil {
		return err
	}

	l.Workspace = raw.Workspace
	l.Mode = mode
	l.Orientation = orient
	l.Display = raw.Display
	l.Windows = nil
	for i, item := range raw.Windows {
		node, err := decodeNode(item)
		if err != nil {
			return fmt.Errorf("windows[%d]: %w", i, err)
		}
		l.Windows = append(l.Windows, node)
	}
	return nil
}
