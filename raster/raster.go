package raster

import (
	"fmt"
	"image"
	"image/draw"
)

// Raster 宽 x 高的 RGBA 像素缓冲区（straight alpha，每像素 4 字节）
// 不变式：len(Pix) == W*H*4
type Raster struct {
	W, H int
	Pix  []uint8
}

// New 创建一个全透明的像素缓冲区
func New(w, h int) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", w, h)
	}
	return &Raster{
		W:   w,
		H:   h,
		Pix: make([]uint8, w*h*4),
	}, nil
}

// FromImage 把任意图像转为 Raster（经 NRGBA 统一处理）
func FromImage(img image.Image) (*Raster, error) {
	b := img.Bounds()
	r, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("from image: %w", err)
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != r.W*4 || !b.Min.Eq(image.Point{}) {
		dst := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		nrgba = dst
	}
	copy(r.Pix, nrgba.Pix)
	return r, nil
}

// Clone 返回缓冲区的独立副本，历史快照只存副本、不共享底层数组
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{W: r.W, H: r.H, Pix: pix}
}

// CopyFrom 把 src 的内容复制进 r，要求尺寸一致
func (r *Raster) CopyFrom(src *Raster) {
	if r.W != src.W || r.H != src.H {
		panic(fmt.Sprintf("raster size mismatch %dx%d vs %dx%d", r.W, r.H, src.W, src.H))
	}
	copy(r.Pix, src.Pix)
}

// At 读取 (x, y) 的 RGBA 四元组，越界返回全 0
func (r *Raster) At(x, y int) (uint8, uint8, uint8, uint8) {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return 0, 0, 0, 0
	}
	i := (y*r.W + x) * 4
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3]
}

// Set 写入 (x, y) 的 RGBA 四元组，越界静默忽略
func (r *Raster) Set(x, y int, cr, cg, cb, ca uint8) {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return
	}
	i := (y*r.W + x) * 4
	r.Pix[i] = cr
	r.Pix[i+1] = cg
	r.Pix[i+2] = cb
	r.Pix[i+3] = ca
}

// Alpha 只读 alpha 通道，越界返回 0
func (r *Raster) Alpha(x, y int) uint8 {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return 0
	}
	return r.Pix[(y*r.W+x)*4+3]
}

// SetAlpha 只写 alpha 通道，RGB 不动，越界静默忽略
func (r *Raster) SetAlpha(x, y int, a uint8) {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return
	}
	r.Pix[(y*r.W+x)*4+3] = a
}

// Clear 全部像素清为全透明
func (r *Raster) Clear() {
	for i := range r.Pix {
		r.Pix[i] = 0
	}
}

// ToImage 转成 *image.NRGBA（复制一份，后续修改互不影响）
func (r *Raster) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	copy(img.Pix, r.Pix)
	return img
}

// Equal 判断两个缓冲区尺寸和内容完全一致
func (r *Raster) Equal(other *Raster) bool {
	if r.W != other.W || r.H != other.H {
		return false
	}
	for i := range r.Pix {
		if r.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}
