package cutout

import "github.com/chaos-io/matting/raster"

// BrushTool 手动笔刷的三种语义
type BrushTool string

const (
	// BrushErase 单层遗留模式：直接把底图圆内 alpha 清 0，立刻生效
	BrushErase BrushTool = "erase"
	// BrushAdd 双层模式：以不透明标记色 source-over 画进蒙版
	BrushAdd BrushTool = "add"
	// BrushSubtract 双层模式：destination-out 清掉蒙版圆内的标记
	BrushSubtract BrushTool = "subtract"
)

// ParseBrushTool 解析笔刷名，未知名字退回双层 ADD
func ParseBrushTool(s string) (BrushTool, bool) {
	switch BrushTool(s) {
	case BrushErase, BrushAdd, BrushSubtract:
		return BrushTool(s), true
	default:
		return BrushAdd, false
	}
}

// EraseCircle 把圆内像素的 alpha 清 0（destination-out，不透明笔刷）
// 越界部分由逐轴边界检查静默裁掉
func EraseCircle(r *raster.Raster, cx, cy, radius int) {
	forEachInCircle(r, cx, cy, radius, func(i int) {
		r.Pix[i+3] = 0
	})
}

// PaintCircle 把圆内像素置为不透明标记色（不透明源的 source-over 就是覆盖）
func PaintCircle(r *raster.Raster, cx, cy, radius int) {
	forEachInCircle(r, cx, cy, radius, func(i int) {
		r.Pix[i] = MarkR
		r.Pix[i+1] = MarkG
		r.Pix[i+2] = MarkB
		r.Pix[i+3] = MarkA
	})
}

func forEachInCircle(r *raster.Raster, cx, cy, radius int, fn func(i int)) {
	if radius <= 0 {
		return
	}
	rr := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < 0 || y >= r.H {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := cx + dx
			if x < 0 || x >= r.W {
				continue
			}
			if dx*dx+dy*dy > rr {
				continue
			}
			fn((y*r.W + x) * 4)
		}
	}
}
