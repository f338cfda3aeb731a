package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"powertree/local-app/src/pkg/log"
)

func TestPublishRunsHandlersInOrder(t *testing.T) {
	em := NewEventManager(log.NewNopLogger())

	var calls []string
	em.Subscribe(TreeChanged, func(e Event) { calls = append(calls, "first") })
	em.Subscribe(TreeChanged, func(e Event) { calls = append(calls, "second") })
	em.Subscribe(SelectionChanged, func(e Event) { calls = append(calls, "selection") })

	em.Publish(Event{Type: TreeChanged})

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishRecoversFromPanickingHandler(t *testing.T) {
	em := NewEventManager(log.NewNopLogger())

	reached := false
	em.Subscribe(TreeReplaced, func(e Event) { panic("renderer failed") })
	em.Subscribe(TreeReplaced, func(e Event) { reached = true })

	assert.NotPanics(t, func() { em.Publish(Event{Type: TreeReplaced, Data: 1}) })
	assert.True(t, reached)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "DisplayChanged", DisplayChanged.String())
	assert.Equal(t, "Unknown", EventType(99).String())
}
