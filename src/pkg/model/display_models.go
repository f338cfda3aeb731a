package model

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// Display attribute keys, in rendering order.
const (
	AttrName       = "name"
	AttrPower      = "power"
	AttrChildPower = "child_power"
	AttrTotalPower = "total_power"
	AttrLocation   = "location"
	AttrNote       = "note"
)

// DisplayAttributes lists every known display attribute in rendering order.
var DisplayAttributes = []string{
	AttrName,
	AttrPower,
	AttrChildPower,
	AttrTotalPower,
	AttrLocation,
	AttrNote,
}

// DisplayOptions maps a display attribute to its per-node visibility.
// A missing entry means visible.
type DisplayOptions map[string]bool

// DefaultDisplayOptions returns a set with every known attribute visible.
func DefaultDisplayOptions() DisplayOptions {
	opts := make(DisplayOptions, len(DisplayAttributes))
	for _, attr := range DisplayAttributes {
		opts[attr] = true
	}
	return opts
}

// Visible reports whether the attribute is visible for the node.
func (d DisplayOptions) Visible(key string) bool {
	v, ok := d[key]
	return !ok || v
}

// Clone returns an independent copy.
func (d DisplayOptions) Clone() DisplayOptions {
	if d == nil {
		return nil
	}
	out := make(DisplayOptions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Normalize returns a set holding exactly the known attributes, with
// missing entries resolved to visible. Unknown keys are dropped.
func (d DisplayOptions) Normalize() DisplayOptions {
	out := make(DisplayOptions, len(DisplayAttributes))
	for _, attr := range DisplayAttributes {
		out[attr] = d.Visible(attr)
	}
	return out
}

type xmlDisplayOption struct {
	Key     string `xml:"key,attr"`
	Visible string `xml:"visible,attr"`
}

// MarshalXML writes the options as <option key=".." visible=".."/> elements
// sorted by key, since encoding/xml cannot encode maps.
func (d DisplayOptions) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opt := xmlDisplayOption{Key: k, Visible: strconv.FormatBool(d[k])}
		if err := e.EncodeElement(opt, xml.StartElement{Name: xml.Name{Local: "option"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads the representation written by MarshalXML.
func (d *DisplayOptions) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var doc struct {
		Options []xmlDisplayOption `xml:"option"`
	}
	if err := dec.DecodeElement(&doc, &start); err != nil {
		return err
	}
	opts := make(DisplayOptions, len(doc.Options))
	for _, opt := range doc.Options {
		visible, err := strconv.ParseBool(opt.Visible)
		if err != nil {
			return fmt.Errorf("invalid visibility for display option %q: %w", opt.Key, err)
		}
		opts[opt.Key] = visible
	}
	*d = opts
	return nil
}

// AttributeState pairs a display attribute with its global toggle.
type AttributeState struct {
	Key     string
	Enabled bool
}
