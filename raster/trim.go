package raster

import (
	"errors"
	"image"
)

// ErrNoForeground 图中没有超过阈值的不透明像素
var ErrNoForeground = errors.New("未检测到前景区域")

// HasUsefulAlpha 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为已经抠过图
func (r *Raster) HasUsefulAlpha() bool {
	for i := 3; i < len(r.Pix); i += 4 {
		if r.Pix[i] != 255 {
			return true
		}
	}
	return false
}

// ForegroundBBox 从 alpha 通道计算主体 bounding box
// 把 alpha > threshold * 255 的像素当作主体
func (r *Raster) ForegroundBBox(threshold float64) (image.Rectangle, error) {
	th := uint8(threshold * 255)

	minX, minY := r.W, r.H
	maxX, maxY := 0, 0
	found := false

	for y := 0; y < r.H; y++ {
		row := y * r.W * 4
		for x := 0; x < r.W; x++ {
			a := r.Pix[row+x*4+3]
			if a > th {
				found = true
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if !found {
		return image.Rectangle{}, ErrNoForeground
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// TrimToForeground 裁掉主体四周的透明边框，导出前可选使用
func (r *Raster) TrimToForeground(threshold float64) (*Raster, error) {
	bbox, err := r.ForegroundBBox(threshold)
	if err != nil {
		return nil, err
	}

	out, err := New(bbox.Dx(), bbox.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.H; y++ {
		srcRow := ((y+bbox.Min.Y)*r.W + bbox.Min.X) * 4
		dstRow := y * out.W * 4
		copy(out.Pix[dstRow:dstRow+out.W*4], r.Pix[srcRow:srcRow+out.W*4])
	}
	return out, nil
}
