package queue

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
)

var ErrEmpty = errors.New("queue is empty")

// TaskQueue is a FIFO of tasks with O(1) lookup by id. It never blocks: callers poll
// with TryGet and decide themselves what an empty queue means. A popped task stays
// counted as running until Done is called for it.
type TaskQueue[T any] struct {
	tasks   *list.List
	taskMap map[string]*Task[T]
	running map[string]*Task[T]
	mu      sync.RWMutex
}

func NewTaskQueue[T any]() *TaskQueue[T] {
	return &TaskQueue[T]{
		tasks:   list.New(),
		taskMap: make(map[string]*Task[T]),
		running: make(map[string]*Task[T]),
	}
}

func (tq *TaskQueue[T]) Add(task *Task[T]) error {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	if _, exists := tq.taskMap[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}
	if task.IsCancelled() {
		return fmt.Errorf("task %s has been cancelled", task.ID)
	}

	task.element = tq.tasks.PushBack(task)
	tq.taskMap[task.ID] = task
	return nil
}

// TryGet pops the oldest task that is not cancelled and marks it running.
func (tq *TaskQueue[T]) TryGet() (*Task[T], error) {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	for tq.tasks.Len() > 0 {
		element := tq.tasks.Front()
		task := element.Value.(*Task[T])
		tq.tasks.Remove(element)
		task.element = nil
		delete(tq.taskMap, task.ID)

		if !task.IsCancelled() {
			tq.running[task.ID] = task
			return task, nil
		}
	}
	return nil, ErrEmpty
}

func (tq *TaskQueue[T]) Done(taskID string) {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	delete(tq.running, taskID)
}

// Length counts pending tasks, cancelled ones included.
func (tq *TaskQueue[T]) Length() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()
	return tq.tasks.Len()
}

func (tq *TaskQueue[T]) ActiveLength() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()

	count := 0
	for element := tq.tasks.Front(); element != nil; element = element.Next() {
		if !element.Value.(*Task[T]).IsCancelled() {
			count++
		}
	}
	return count
}

func (tq *TaskQueue[T]) RunningLength() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()
	return len(tq.running)
}

// Clear cancels and drops all pending tasks, returning them in queue order.
// Running tasks are left alone.
func (tq *TaskQueue[T]) Clear() []*Task[T] {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	dropped := make([]*Task[T], 0, tq.tasks.Len())
	for element := tq.tasks.Front(); element != nil; element = element.Next() {
		task := element.Value.(*Task[T])
		task.Cancel()
		task.element = nil
		dropped = append(dropped, task)
	}
	tq.tasks.Init()
	tq.taskMap = make(map[string]*Task[T])
	return dropped
}
