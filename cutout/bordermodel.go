package cutout

import "github.com/chaos-io/matting/raster"

// BorderModel 无连通性约束的背景去除：
// 以四个角的颜色为参考集，逐像素比对，命中任意一个就把 alpha 清 0
// 与 FloodFill 的关键差异：被前景包住的同色区域也会被清掉
func BorderModel(r *raster.Raster, tolerance, smoothing int) {
	corners := [4]RGB{
		rgbAt(r, 0, 0),
		rgbAt(r, r.W-1, 0),
		rgbAt(r, 0, r.H-1),
		rgbAt(r, r.W-1, r.H-1),
	}

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			c := rgbAt(r, x, y)
			for _, ref := range corners {
				if Matches(c, ref, tolerance) {
					r.Pix[(y*r.W+x)*4+3] = 0
					break
				}
			}
		}
	}

	if smoothing > 0 {
		Feather(r, smoothing)
	}
}
