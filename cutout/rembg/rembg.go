// Package rembg 对接远端 AI 抠图服务
// 服务是个黑盒：收一张图，异步算完返回一张完整的替换图（可以不同尺寸）或失败
package rembg

import (
	"context"
	"image"
)

// Remover AI 抠图协作方
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// DefaultRemBG 原图透传的占位实现，没配远端服务时使用
type DefaultRemBG struct{}

func NewDefaultRemBG() *DefaultRemBG {
	return &DefaultRemBG{}
}

func (d *DefaultRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	return img, nil
}
