package cutout

import (
	"image"

	"github.com/chaos-io/matting/raster"
)

// FloodFill 连通性约束的背景去除：
// 参考色取 (0,0) 像素，从四个角做栈式泛洪，匹配的像素 alpha 清 0
// 只有从某个角经过连续匹配像素可达的区域才会被清掉，
// 被前景完全包住的同色"孔洞"保持不动
func FloodFill(r *raster.Raster, tolerance, smoothing int) {
	ref := rgbAt(r, 0, 0)
	visited := make([]bool, r.W*r.H)

	// 四角入栈，LIFO 处理；重复入栈在出栈时过滤
	stack := []image.Point{
		{X: 0, Y: 0},
		{X: r.W - 1, Y: 0},
		{X: 0, Y: r.H - 1},
		{X: r.W - 1, Y: r.H - 1},
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := p.Y*r.W + p.X
		if visited[idx] {
			continue
		}
		visited[idx] = true

		if !Matches(rgbAt(r, p.X, p.Y), ref, tolerance) {
			continue
		}
		r.Pix[idx*4+3] = 0

		if p.X > 0 {
			stack = append(stack, image.Point{X: p.X - 1, Y: p.Y})
		}
		if p.X < r.W-1 {
			stack = append(stack, image.Point{X: p.X + 1, Y: p.Y})
		}
		if p.Y > 0 {
			stack = append(stack, image.Point{X: p.X, Y: p.Y - 1})
		}
		if p.Y < r.H-1 {
			stack = append(stack, image.Point{X: p.X, Y: p.Y + 1})
		}
	}

	if smoothing > 0 {
		Feather(r, smoothing)
	}
}
