// Package cutout 实现背景去除的像素引擎：
// 颜色容差匹配、角点泛洪去除、边框模型去除、alpha 羽化、双层合成和手动笔刷。
package cutout

// RGB 匹配用的参考色三元组
type RGB struct {
	R, G, B uint8
}

// Matches 容差范围内的颜色近似判断
// tolerance 为百分比 [0,100]，映射到 0-765 的通道差值总和；调用方负责先夹取范围
// |ΔR|+|ΔG|+|ΔB| < tolerance*3*2.55 时认为匹配，对 c1/c2 对称
func Matches(c1, c2 RGB, tolerance int) bool {
	diff := absDiff(c1.R, c2.R) + absDiff(c1.G, c2.G) + absDiff(c1.B, c2.B)
	return float64(diff) < float64(tolerance)*3*2.55
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
