package cutout

import (
	"fmt"

	"github.com/chaos-io/matting/raster"
)

// Algorithm 自动去除算法的两值选择
type Algorithm string

const (
	AlgorithmFloodFill   Algorithm = "flood_fill"
	AlgorithmBorderModel Algorithm = "border_model"
)

// ParseAlgorithm 解析算法名，未知名字报错
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmFloodFill, AlgorithmBorderModel:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("unknown removal algorithm %q", s)
	}
}

// Remove 在 r 上原地执行选定的去除算法
// tolerance/smoothing 不在引擎内校验，调用方负责夹取范围
func Remove(r *raster.Raster, algo Algorithm, tolerance, smoothing int) error {
	switch algo {
	case AlgorithmFloodFill:
		FloodFill(r, tolerance, smoothing)
	case AlgorithmBorderModel:
		BorderModel(r, tolerance, smoothing)
	default:
		return fmt.Errorf("unknown removal algorithm %q", algo)
	}
	return nil
}

func rgbAt(r *raster.Raster, x, y int) RGB {
	cr, cg, cb, _ := r.At(x, y)
	return RGB{R: cr, G: cg, B: cb}
}
