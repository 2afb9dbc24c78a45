// Package observe provides the change-propagation primitive shared by the
// engine stages: an explicit, ordered list of zero-argument callbacks.
// Notification is synchronous, so an observer always sees the fully applied
// post-mutation state of its upstream stage.
package observe

// List holds registered change callbacks in registration order.
type List struct {
	callbacks []func()
}

// Subscribe registers fn to run on every future change notification.
func (l *List) Subscribe(fn func()) {
	l.callbacks = append(l.callbacks, fn)
}

// Notify invokes every registered callback exactly once, in registration
// order. Callers must not hold locks that the callbacks may need.
func (l *List) Notify() {
	for _, fn := range l.callbacks {
		fn()
	}
}
