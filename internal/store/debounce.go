package store

import (
	"sync"
	"time"
)

// Debouncer 合并短时间内的多次触发，只在最后一次触发 wait 之后执行一次。
type Debouncer struct {
	wait time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger 重置计时器，wait 为 0 时立即同步执行。
func (d *Debouncer) Trigger(fn func()) {
	if d.wait <= 0 {
		fn()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, fn)
}

// Stop 取消尚未执行的触发。
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
