// Package fsm 提供轻量级泛型有限状态机，用于聚合根的状态流转校验
package fsm

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransitionNotAllowed 当前状态下不允许触发该事件
var ErrTransitionNotAllowed = errors.New("transition not allowed")

type transitionKey[S comparable, E comparable] struct {
	from  S
	event E
}

// Machine 状态机：状态类型 S，事件类型 E
type Machine[S comparable, E comparable] struct {
	current     S
	transitions map[transitionKey[S, E]]S
}

// NewMachine 以初始状态创建状态机
func NewMachine[S comparable, E comparable](initial S) *Machine[S, E] {
	return &Machine[S, E]{
		current:     initial,
		transitions: make(map[transitionKey[S, E]]S),
	}
}

// AddTransition 注册一条 from --event--> to 的流转规则
func (m *Machine[S, E]) AddTransition(from S, event E, to S) {
	m.transitions[transitionKey[S, E]{from: from, event: event}] = to
}

// Current 返回当前状态
func (m *Machine[S, E]) Current() S {
	return m.current
}

// Can 判断当前状态下能否触发事件
func (m *Machine[S, E]) Can(event E) bool {
	_, ok := m.transitions[transitionKey[S, E]{from: m.current, event: event}]
	return ok
}

// Trigger 触发事件；规则不存在时返回 ErrTransitionNotAllowed 且状态不变
func (m *Machine[S, E]) Trigger(ctx context.Context, event E) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to, ok := m.transitions[transitionKey[S, E]{from: m.current, event: event}]
	if !ok {
		return fmt.Errorf("%w: event %v in state %v", ErrTransitionNotAllowed, event, m.current)
	}

	m.current = to
	return nil
}
