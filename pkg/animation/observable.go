package animation

// Observer 一个订阅者
type Observer[T any] struct {
	callback func(T)
	once     bool
	removed  bool
}

// Observable 订阅者列表
//
// 用于动画结束、循环等通知。Animatable 释放时会 Clear()，
// 避免闭包在动画结束后仍然被引用。
type Observable[T any] struct {
	observers []*Observer[T]
}

// NewObservable 创建空的订阅者列表
func NewObservable[T any]() *Observable[T] {
	return &Observable[T]{}
}

// Add 订阅通知
func (o *Observable[T]) Add(callback func(T)) *Observer[T] {
	obs := &Observer[T]{callback: callback}
	o.observers = append(o.observers, obs)
	return obs
}

// AddOnce 订阅一次性通知（触发后自动移除）
func (o *Observable[T]) AddOnce(callback func(T)) *Observer[T] {
	obs := o.Add(callback)
	obs.once = true
	return obs
}

// Remove 取消订阅，返回是否找到
func (o *Observable[T]) Remove(obs *Observer[T]) bool {
	if o == nil || obs == nil {
		return false
	}
	for i, cur := range o.observers {
		if cur == obs {
			obs.removed = true
			o.observers = append(o.observers[:i:i], o.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Notify 按订阅顺序通知所有订阅者
// 回调中取消订阅或清空列表是安全的：被移除的订阅者不会再被调用
func (o *Observable[T]) Notify(v T) {
	if o == nil || len(o.observers) == 0 {
		return
	}
	snapshot := append([]*Observer[T](nil), o.observers...)
	for _, obs := range snapshot {
		if obs.removed {
			continue
		}
		if obs.once {
			o.Remove(obs)
		}
		obs.callback(v)
	}
}

// Clear 移除所有订阅者
func (o *Observable[T]) Clear() {
	if o == nil {
		return
	}
	for _, obs := range o.observers {
		obs.removed = true
	}
	o.observers = nil
}

// HasObservers 是否有订阅者
func (o *Observable[T]) HasObservers() bool {
	return o != nil && len(o.observers) > 0
}
