package fsm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed transition moves state", func(t *testing.T) {
		m := NewMachine[string, string]("draft")
		m.AddTransition("draft", "PUBLISH", "published")

		require.True(t, m.Can("PUBLISH"))
		require.NoError(t, m.Trigger(ctx, "PUBLISH"))
		assert.Equal(t, "published", m.Current())
	})

	t.Run("unknown event leaves state unchanged", func(t *testing.T) {
		m := NewMachine[string, string]("draft")
		m.AddTransition("draft", "PUBLISH", "published")

		err := m.Trigger(ctx, "ARCHIVE")
		require.ErrorIs(t, err, ErrTransitionNotAllowed)
		assert.Equal(t, "draft", m.Current())
	})

	t.Run("event only valid from its source state", func(t *testing.T) {
		m := NewMachine[string, string]("draft")
		m.AddTransition("draft", "PUBLISH", "published")
		m.AddTransition("published", "ARCHIVE", "archived")

		require.NoError(t, m.Trigger(ctx, "PUBLISH"))
		err := m.Trigger(ctx, "PUBLISH")
		require.ErrorIs(t, err, ErrTransitionNotAllowed)
		assert.Equal(t, "published", m.Current())
	})

	t.Run("cancelled context blocks trigger", func(t *testing.T) {
		m := NewMachine[string, string]("draft")
		m.AddTransition("draft", "PUBLISH", "published")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := m.Trigger(cancelled, "PUBLISH")
		require.Error(t, err)
		assert.Equal(t, "draft", m.Current())
	})
}
