package cutout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chaos-io/matting/raster"
)

// newRaster 测试辅助：全部像素填同一个不透明颜色
func newRaster(t *testing.T, w, h int, c RGB) *raster.Raster {
	t.Helper()
	r, err := raster.New(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.Set(x, y, c.R, c.G, c.B, 255)
		}
	}
	return r
}

var (
	white = RGB{255, 255, 255}
	black = RGB{0, 0, 0}
)

// ringRaster 白色边框圈 + 黑色内部，去背场景的标准画布
func ringRaster(t *testing.T, w, h int) *raster.Raster {
	t.Helper()
	r := newRaster(t, w, h, black)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || x == w-1 || y == 0 || y == h-1 {
				r.Set(x, y, white.R, white.G, white.B, 255)
			}
		}
	}
	return r
}

// holeRaster 5x5：白色外圈、黑色中圈、白色中心孔
// 中心孔与边框同色但没有连通路径，用来区分两种去除算法
func holeRaster(t *testing.T) *raster.Raster {
	t.Helper()
	r := ringRaster(t, 5, 5)
	r.Set(2, 2, white.R, white.G, white.B, 255)
	return r
}
