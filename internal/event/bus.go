// bus.go

package event

import (
	"log"
	"sync"
	"sync/atomic"
)

// Event 总线上传递的事件
type Event struct {
	Type    EventType
	Payload interface{}
}

// Handler 事件处理函数
type Handler func(Event)

// Subscription 订阅句柄，取消后不会再被调用
type Subscription struct {
	bus       *Bus
	eventType EventType
	handler   Handler
	active    atomic.Bool
}

// Unsubscribe 取消订阅，可重复调用
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

// Active 订阅是否仍然有效
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Bus 显式注入的事件总线，每个会话持有自己的实例
type Bus struct {
	mu        sync.RWMutex
	listeners map[EventType][]*Subscription
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[EventType][]*Subscription),
	}
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(eventType EventType, handler Handler) *Subscription {
	sub := &Subscription{
		bus:       b,
		eventType: eventType,
		handler:   handler,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.listeners[eventType] = append(b.listeners[eventType], sub)
	b.mu.Unlock()

	return sub
}

// Publish 发布事件，单向且不等待结果
// 分发过程中被取消的订阅不会再被调用
func (b *Bus) Publish(eventType EventType, payload interface{}) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.listeners[eventType]))
	copy(subs, b.listeners[eventType])
	b.mu.RUnlock()

	ev := Event{Type: eventType, Payload: payload}
	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		b.invoke(sub, ev)
	}
}

// invoke 调用处理函数，单个监听器的panic不影响其他监听器
func (b *Bus) invoke(sub *Subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("事件 %s 处理失败: %v", ev.Type, r)
		}
	}()
	sub.handler(ev)
}

// ListenerCount 返回指定事件的监听器数量
func (b *Bus) ListenerCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType])
}

// Clear 取消全部订阅
func (b *Bus) Clear() {
	b.mu.Lock()
	all := b.listeners
	b.listeners = make(map[EventType][]*Subscription)
	b.mu.Unlock()

	for _, subs := range all {
		for _, sub := range subs {
			sub.active.Store(false)
		}
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[sub.eventType]
	for i, s := range subs {
		if s == sub {
			b.listeners[sub.eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.listeners[sub.eventType]) == 0 {
		delete(b.listeners, sub.eventType)
	}
}
