// arena.go

package combat

import "github.com/jacl-coder/PixelStorm-Quiz/internal/models"

// arena 以稳定句柄存放实体的稠密集合
// 删除只做标记，帧末 compact 统一移除，遍历期间插入的实体下一次遍历才可见
type arena[T models.Entity] struct {
	items   []T
	handles []models.Handle
	index   map[models.Handle]int
}

func newArena[T models.Entity]() *arena[T] {
	return &arena[T]{
		index: make(map[models.Handle]int),
	}
}

func (a *arena[T]) insert(h models.Handle, item T) {
	a.index[h] = len(a.items)
	a.items = append(a.items, item)
	a.handles = append(a.handles, h)
}

// get 按句柄查找，已标记删除的实体视为不存在
func (a *arena[T]) get(h models.Handle) (T, bool) {
	var zero T
	i, ok := a.index[h]
	if !ok || a.items[i].IsRemoved() {
		return zero, false
	}
	return a.items[i], true
}

// each 遍历当前存活的实体，fn 返回 false 时停止
func (a *arena[T]) each(fn func(T) bool) {
	n := len(a.items)
	for i := 0; i < n; i++ {
		if a.items[i].IsRemoved() {
			continue
		}
		if !fn(a.items[i]) {
			return
		}
	}
}

// live 存活实体数量
func (a *arena[T]) live() int {
	count := 0
	for _, item := range a.items {
		if !item.IsRemoved() {
			count++
		}
	}
	return count
}

// compact 移除已标记的实体并重建索引，返回移除数量
func (a *arena[T]) compact() int {
	kept := 0
	for i, item := range a.items {
		if item.IsRemoved() {
			delete(a.index, a.handles[i])
			continue
		}
		a.items[kept] = item
		a.handles[kept] = a.handles[i]
		a.index[a.handles[i]] = kept
		kept++
	}

	removed := len(a.items) - kept
	var zero T
	for i := kept; i < len(a.items); i++ {
		a.items[i] = zero
	}
	a.items = a.items[:kept]
	a.handles = a.handles[:kept]
	return removed
}

// clear 清空全部实体
func (a *arena[T]) clear() {
	a.items = nil
	a.handles = nil
	a.index = make(map[models.Handle]int)
}
