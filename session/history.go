// Package session 持有一张图的编辑会话：底图 + 蒙版双层、
// 双栈快照历史（笔画级和操作级可独立撤销）以及笔画作用域。
package session

import "github.com/chaos-io/matting/raster"

// History 定容快照栈
// 入栈存的是完整副本；超过容量时丢最旧的一条，绝不丢最新的
type History struct {
	snaps []*raster.Raster
	limit int
}

// NewHistory 创建容量为 limit 的快照栈
func NewHistory(limit int) *History {
	return &History{
		snaps: make([]*raster.Raster, 0, limit),
		limit: limit,
	}
}

// Push 存入 r 的一份独立副本
func (h *History) Push(r *raster.Raster) {
	h.snaps = append(h.snaps, r.Clone())
	if len(h.snaps) > h.limit {
		h.snaps = h.snaps[1:]
	}
}

// Pop 取出并移除栈顶快照，空栈返回 (nil, false)
// 所有权转移给调用方，栈里不再保留引用
func (h *History) Pop() (*raster.Raster, bool) {
	if len(h.snaps) == 0 {
		return nil, false
	}
	top := h.snaps[len(h.snaps)-1]
	h.snaps[len(h.snaps)-1] = nil
	h.snaps = h.snaps[:len(h.snaps)-1]
	return top, true
}

// Drop 丢弃栈顶快照，空栈时不做任何事
func (h *History) Drop() {
	if len(h.snaps) == 0 {
		return
	}
	h.snaps[len(h.snaps)-1] = nil
	h.snaps = h.snaps[:len(h.snaps)-1]
}

// Top 返回栈顶快照（不移除），空栈返回 nil
// 返回的快照视为不可变，调用方需要修改时自行 Clone
func (h *History) Top() *raster.Raster {
	if len(h.snaps) == 0 {
		return nil
	}
	return h.snaps[len(h.snaps)-1]
}

// Len 当前栈深
func (h *History) Len() int { return len(h.snaps) }

// Clear 清空整个栈
func (h *History) Clear() {
	h.snaps = h.snaps[:0]
}
