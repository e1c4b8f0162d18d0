package cutout

import "github.com/chaos-io/matting/raster"

// Feather 对 alpha 通道做多轮 3x3 均值模糊，柔化抠图硬边
// strength ∈ [0,10]，<=0 时不做任何事；轮数 = ceil(strength/2)
// 每轮从上一轮结果的快照读邻域、写回原缓冲区（ping-pong，绝不同缓冲区内原地读写）
// 最外圈 1 像素边框永远不动，RGB 通道永远不动
func Feather(r *raster.Raster, strength int) {
	if strength <= 0 {
		return
	}
	passes := (strength + 1) / 2

	snapshot := make([]uint8, r.W*r.H)
	for p := 0; p < passes; p++ {
		for i := 0; i < r.W*r.H; i++ {
			snapshot[i] = r.Pix[i*4+3]
		}

		for y := 1; y < r.H-1; y++ {
			for x := 1; x < r.W-1; x++ {
				sum := 0
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						sum += int(snapshot[(y+ky)*r.W+x+kx])
					}
				}
				r.Pix[(y*r.W+x)*4+3] = uint8(sum / 9)
			}
		}
	}
}
