package data

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"powertree/local-app/src/pkg/event"
	"powertree/local-app/src/pkg/model"
)

var (
	validate      = validator.New()
	attributeRule = "required,oneof=" + strings.Join(model.DisplayAttributes, " ")
)

// DisplaySettings holds the global on/off toggle of every display
// attribute. An attribute is rendered for a node only when both the
// global toggle and the node's own option are on.
type DisplaySettings struct {
	enabled map[string]bool
}

// NewDisplaySettings returns settings with every attribute enabled.
func NewDisplaySettings() *DisplaySettings {
	return &DisplaySettings{enabled: model.DefaultDisplayOptions()}
}

// ValidateAttribute checks that key names a known display attribute.
func ValidateAttribute(key string) error {
	if err := validate.Var(key, attributeRule); err != nil {
		return fmt.Errorf("unknown display attribute %q (expected one of: %s)", key, strings.Join(model.DisplayAttributes, ", "))
	}
	return nil
}

// SetVisible turns the global toggle of an attribute on or off.
func (s *DisplaySettings) SetVisible(key string, visible bool) error {
	if err := ValidateAttribute(key); err != nil {
		return err
	}
	s.enabled[key] = visible
	return nil
}

// Enabled reports the global toggle of an attribute.
func (s *DisplaySettings) Enabled(key string) bool {
	return s.enabled[key]
}

// Attributes returns every attribute with its toggle, in rendering order.
func (s *DisplaySettings) Attributes() []model.AttributeState {
	states := make([]model.AttributeState, 0, len(model.DisplayAttributes))
	for _, key := range model.DisplayAttributes {
		states = append(states, model.AttributeState{Key: key, Enabled: s.enabled[key]})
	}
	return states
}

// SetAttributeVisible changes a global display toggle and announces it.
func (d *Document) SetAttributeVisible(key string, visible bool) error {
	if err := d.display.SetVisible(key, visible); err != nil {
		return err
	}
	d.events.Publish(event.Event{Type: event.DisplayChanged, Data: model.AttributeState{Key: key, Enabled: visible}})
	return nil
}

// DisplayAttributes returns the global display toggles in rendering order.
func (d *Document) DisplayAttributes() []model.AttributeState {
	return d.display.Attributes()
}
