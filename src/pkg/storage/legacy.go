package storage

import (
	"bytes"
	"encoding/json"
	"encoding/xml"

	"gopkg.in/yaml.v3"

	"powertree/local-app/src/pkg/model"
)

// legacyNode is the tolerant shape of a node as found in saved documents.
// Older saves may omit displayOptions, location, note or children, may
// carry power as a string, and may hold any id; ids and derived fields
// are not read.
type legacyNode struct {
	XMLName        xml.Name             `json:"-" xml:"node" yaml:"-"`
	Name           string               `json:"name" xml:"name,attr" yaml:"name"`
	Power          legacyPower          `json:"power" xml:"power,attr" yaml:"power"`
	Color          string               `json:"color" xml:"color,attr" yaml:"color"`
	Location       string               `json:"location" xml:"location,attr" yaml:"location"`
	Note           string               `json:"note" xml:"note,attr" yaml:"note"`
	DisplayOptions model.DisplayOptions `json:"displayOptions" xml:"displayOptions" yaml:"displayOptions"`
	Children       []*legacyNode        `json:"children" xml:"children>node" yaml:"children"`
}

// legacyPower accepts numbers, numeric strings and anything else, which
// becomes 0.
type legacyPower float64

func (p *legacyPower) UnmarshalJSON(data []byte) error {
	// numbers stay text so out-of-range literals coerce to 0
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*p = legacyPower(coercePower(raw))
	return nil
}

func (p *legacyPower) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = legacyPower(coercePower(raw))
	return nil
}

func (p *legacyPower) UnmarshalXMLAttr(attr xml.Attr) error {
	*p = legacyPower(model.ParsePower(attr.Value))
	return nil
}

func coercePower(raw interface{}) float64 {
	switch v := raw.(type) {
	case json.Number:
		return model.ParsePower(v.String())
	case float64:
		return model.SanitizePower(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		return model.ParsePower(v)
	default:
		return 0
	}
}

// normalize converts a decoded document into a canonical node tree:
// display options resolved for every attribute, empty child lists instead
// of missing ones, and ids reassigned in pre-order starting at 1.
// Derived power fields are left at zero for the caller to recompute.
func normalize(doc *legacyNode) *model.Node {
	nextID := 1
	var convert func(l *legacyNode) *model.Node
	convert = func(l *legacyNode) *model.Node {
		n := &model.Node{
			ID:             nextID,
			Name:           l.Name,
			Power:          float64(l.Power),
			Color:          l.Color,
			Location:       l.Location,
			Note:           l.Note,
			DisplayOptions: l.DisplayOptions.Normalize(),
			Children:       make([]*model.Node, 0, len(l.Children)),
		}
		nextID++
		for _, child := range l.Children {
			if child == nil {
				continue
			}
			n.Children = append(n.Children, convert(child))
		}
		return n
	}
	return convert(doc)
}
