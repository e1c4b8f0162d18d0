package cutout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/matting/raster"
)

func TestFeatherZeroStrengthIsIdentity(t *testing.T) {
	t.Parallel()

	r := newRaster(t, 5, 5, RGB{10, 20, 30})
	r.SetAlpha(2, 2, 0)
	before := r.Clone()

	Feather(r, 0)
	assert.True(t, r.Equal(before))

	Feather(r, -3)
	assert.True(t, r.Equal(before))
}

func TestFeatherInteriorAverage(t *testing.T) {
	t.Parallel()

	// 3x3 全 90，中心 0：一轮后中心 = (8*90+0)/9 = 80
	r := newRaster(t, 3, 3, white)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			r.SetAlpha(x, y, 90)
		}
	}
	r.SetAlpha(1, 1, 0)

	Feather(r, 1)
	assert.Equal(t, uint8(80), r.Alpha(1, 1))
}

func TestFeatherBorderFrameUntouched(t *testing.T) {
	t.Parallel()

	for _, strength := range []int{1, 5, 10} {
		r := newRaster(t, 6, 6, white)
		r.SetAlpha(2, 2, 0)
		r.SetAlpha(3, 3, 0)

		Feather(r, strength)
		for y := 0; y < 6; y++ {
			for x := 0; x < 6; x++ {
				if x == 0 || x == 5 || y == 0 || y == 5 {
					assert.Equal(t, uint8(255), r.Alpha(x, y),
						"strength=%d 边框像素 (%d,%d) 不应被修改", strength, x, y)
				}
			}
		}
	}
}

func TestFeatherColorChannelsUntouched(t *testing.T) {
	t.Parallel()

	r := newRaster(t, 5, 5, RGB{120, 60, 200})
	r.SetAlpha(2, 2, 0)

	Feather(r, 10)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			cr, cg, cb, _ := r.At(x, y)
			require.Equal(t, RGB{120, 60, 200}, RGB{cr, cg, cb}, "(%d,%d)", x, y)
		}
	}
}

func TestFeatherPassCount(t *testing.T) {
	t.Parallel()

	// strength 4 是两轮；等价于连续做两次一轮（strength 2）
	// 轮与轮之间快照刷新，模糊才会层层扩散
	mk := func() *raster.Raster {
		r := newRaster(t, 7, 7, white)
		r.SetAlpha(3, 3, 0)
		return r
	}

	twoPass := mk()
	Feather(twoPass, 4)

	sequential := mk()
	Feather(sequential, 2)
	Feather(sequential, 2)

	assert.True(t, twoPass.Equal(sequential))

	// 奇数 strength 向上取整：1 和 2 轮数相同
	one := mk()
	Feather(one, 1)
	two := mk()
	Feather(two, 2)
	assert.True(t, one.Equal(two))
}
