package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode 从字节流解码图像并转为 Raster
// 支持 PNG/JPEG/GIF/BMP/TIFF/WebP，零尺寸或解码失败直接报错，不建图层
func Decode(r io.Reader) (*Raster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img)
}

// EncodePNG 把 Raster 无损编码为 PNG 写入 w
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.ToImage()); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	return nil
}

// PNGBytes 返回 PNG 编码后的字节
func (r *Raster) PNGBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Thumbnail 缩放（最长边 <= maxSize），小图原样返回
func (r *Raster) Thumbnail(maxSize int) (*Raster, error) {
	longest := r.W
	if r.H > longest {
		longest = r.H
	}
	if longest <= maxSize {
		return r.Clone(), nil
	}

	scale := float64(maxSize) / float64(longest)
	// 极端长宽比下短边会算成 0，托底到 1 像素
	nw := max(1, int(float64(r.W)*scale))
	nh := max(1, int(float64(r.H)*scale))

	resized := resize.Resize(uint(nw), uint(nh), r.ToImage(), resize.Lanczos3)
	return FromImage(resized)
}
