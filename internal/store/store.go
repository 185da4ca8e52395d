package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"order-skew/config"
	"order-skew/ladder"
	"order-skew/metrics"
)

// EventSink 接收结构化事件，通常接到 logger.LogPlan。
type EventSink func(string, map[string]interface{})

// ErrNotSellOnly 在非只卖模式下切换成交档位时返回。
var ErrNotSellOnly = errors.New("executed toggle requires sell-only mode")

// Store 持有当前参数、基线快照与最新计划。
// 写操作由 writeMu 串行化（含通知订阅者），订阅者按计算顺序收到计划。
// 回调内不得再调用写操作。
type Store struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	cfg      config.PlanConfig
	baseline *ladder.Snapshot
	plan     ladder.Plan

	subMu  sync.Mutex
	subs   map[int]func(ladder.Plan)
	nextID int

	sink EventSink
	now  func() time.Time
}

func New(sink EventSink) *Store {
	return &Store{
		subs: make(map[int]func(ladder.Plan)),
		sink: sink,
		now:  time.Now,
	}
}

// Apply 校验并应用新参数，返回新计划和校验警告。
// 校验失败时保留原状态。
func (s *Store) Apply(c config.PlanConfig) (ladder.Plan, []string, error) {
	warnings, err := config.ValidatePlan(c)
	if err != nil {
		return ladder.Plan{}, nil, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.cfg = c
	plan := s.recomputeLocked()
	s.mu.Unlock()

	s.publish(plan)
	return plan, warnings, nil
}

// ToggleExecuted 设置最高已成交档位；再次选择同一档位则清除。
func (s *Store) ToggleExecuted(rung int) (ladder.Plan, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	if s.cfg.Params().Mode.Kind() != ladder.ModeSellOnly {
		s.mu.Unlock()
		return ladder.Plan{}, ErrNotSellOnly
	}
	if rung <= 0 || s.cfg.ExecutedCutoff == rung {
		s.cfg.ExecutedCutoff = 0
	} else {
		s.cfg.ExecutedCutoff = rung
	}
	plan := s.recomputeLocked()
	cutoff := s.cfg.ExecutedCutoff
	s.mu.Unlock()

	s.emit("executed_toggle", map[string]interface{}{
		"plan_id": plan.ID,
		"cutoff":  cutoff,
	})
	s.publish(plan)
	return plan, nil
}

// Recompute 用当前参数重算，供热更新防抖后调用。
func (s *Store) Recompute() ladder.Plan {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	plan := s.recomputeLocked()
	s.mu.Unlock()
	s.publish(plan)
	return plan
}

// Plan 返回最新计划。
func (s *Store) Plan() ladder.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// Config 返回当前参数。
func (s *Store) Config() config.PlanConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Baseline 返回当前基线快照，可能为 nil。快照只读。
func (s *Store) Baseline() *ladder.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline
}

// Subscribe 注册计划回调，返回取消函数。回调在锁外同步调用。
func (s *Store) Subscribe(fn func(ladder.Plan)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) recomputeLocked() ladder.Plan {
	start := s.now()
	plan, next := ladder.Compute(s.cfg.Params(), s.baseline)
	elapsed := s.now().Sub(start)

	plan.ID = uuid.NewString()
	plan.ComputedAt = s.now().UTC()
	s.baseline = next
	s.plan = plan

	metrics.ObserveCompute(plan.Mode, elapsed)
	metrics.UpdatePlanMetrics(plan)
	s.emit("plan_computed", map[string]interface{}{
		"plan_id":    plan.ID,
		"mode":       string(plan.Mode),
		"rungs":      len(plan.Buy),
		"net_profit": plan.Summary.NetProfit,
		"roi":        plan.Summary.ROI,
		"elapsed_us": elapsed.Microseconds(),
	})
	return plan
}

func (s *Store) publish(plan ladder.Plan) {
	s.subMu.Lock()
	fns := make([]func(ladder.Plan), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(plan)
	}
}

func (s *Store) emit(event string, fields map[string]interface{}) {
	if s.sink != nil {
		s.sink(event, fields)
	}
}
