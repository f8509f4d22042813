package mutation

import (
	"sync"
	"time"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient notification shown once to the admin.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is the uniform channel mutation outcomes are reported through.
type Notifier interface {
	Notify(Notice)
}

const defaultInboxSize = 50

// Inbox buffers notices for one console session until they are drained.
// The oldest notices are dropped once the inbox is full.
type Inbox struct {
	mu        sync.Mutex
	notices   []Notice
	size      int
	listeners map[uint64]func(Notice)
	nextID    uint64
	now       func() time.Time
}

// NewInbox returns an inbox holding at most size notices.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Inbox{
		size:      size,
		listeners: make(map[uint64]func(Notice)),
		now:       time.Now,
	}
}

// Notify stores n and forwards it to live listeners.
func (i *Inbox) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = i.now().UTC()
	}

	i.mu.Lock()
	i.notices = append(i.notices, n)
	if over := len(i.notices) - i.size; over > 0 {
		i.notices = append(i.notices[:0:0], i.notices[over:]...)
	}
	listeners := make([]func(Notice), 0, len(i.listeners))
	for _, fn := range i.listeners {
		listeners = append(listeners, fn)
	}
	i.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
}

// Success records a success notice.
func (i *Inbox) Success(message string) {
	i.Notify(Notice{Level: LevelSuccess, Message: message})
}

// Error records an error notice.
func (i *Inbox) Error(message string) {
	i.Notify(Notice{Level: LevelError, Message: message})
}

// Drain returns the pending notices in arrival order and empties the inbox.
func (i *Inbox) Drain() []Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.notices
	i.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Subscribe forwards every future notice to fn until unsubscribed.
func (i *Inbox) Subscribe(fn func(Notice)) (unsubscribe func()) {
	i.mu.Lock()
	i.nextID++
	id := i.nextID
	i.listeners[id] = fn
	i.mu.Unlock()

	return func() {
		i.mu.Lock()
		delete(i.listeners, id)
		i.mu.Unlock()
	}
}
