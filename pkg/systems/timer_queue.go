package systems

import "container/heap"

// timerTask 延迟任务
type timerTask struct {
	deadline float64
	seq      uint64
	fn       func()
	onCancel func()
}

// taskHeap 按 (deadline, seq) 排序的最小堆
type taskHeap []*timerTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*timerTask)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return task
}

// TimerQueue 帧驱动的延迟任务队列
//
// 错峰生成和错峰音效都通过它调度："N 秒后执行"。
// 每帧由所属阶段调用一次 Advance，到期任务按截止时间顺序执行，
// 截止时间相同时按调度顺序执行。
//
// 调度器重置不会撤回已排队的任务；只有 Clear（阶段销毁）会，
// 被撤回的任务若带有取消回调则执行取消回调。
type TimerQueue struct {
	now   float64
	seq   uint64
	tasks taskHeap
}

// NewTimerQueue 创建空队列
func NewTimerQueue() *TimerQueue {
	return &TimerQueue{}
}

// Schedule 在 delay 秒后执行 fn
// delay <= 0 的任务在下一次 Advance 时执行
func (q *TimerQueue) Schedule(delay float64, fn func()) {
	q.ScheduleWithCancel(delay, fn, nil)
}

// ScheduleWithCancel 同 Schedule，任务被 Clear 撤回时执行 onCancel
func (q *TimerQueue) ScheduleWithCancel(delay float64, fn, onCancel func()) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	q.seq++
	heap.Push(&q.tasks, &timerTask{
		deadline: q.now + delay,
		seq:      q.seq,
		fn:       fn,
		onCancel: onCancel,
	})
}

// Advance 推进时钟并执行所有到期任务，返回执行的任务数
// 任务回调中新调度的任务若已到期，也会在本次 Advance 中执行
func (q *TimerQueue) Advance(dt float64) int {
	if dt > 0 {
		q.now += dt
	}

	fired := 0
	for q.tasks.Len() > 0 && q.tasks[0].deadline <= q.now {
		task := heap.Pop(&q.tasks).(*timerTask)
		task.fn()
		fired++
	}
	return fired
}

// Len 排队中的任务数
func (q *TimerQueue) Len() int {
	return q.tasks.Len()
}

// Clear 撤回所有排队任务，按截止时间顺序执行其取消回调
func (q *TimerQueue) Clear() {
	pending := q.tasks
	q.tasks = nil
	for pending.Len() > 0 {
		task := heap.Pop(&pending).(*timerTask)
		if task.onCancel != nil {
			task.onCancel()
		}
	}
}

// Now 队列时钟（自创建以来累计的秒数）
func (q *TimerQueue) Now() float64 {
	return q.now
}
