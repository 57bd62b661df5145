package utils

import (
	"fmt"
	"strings"

	"github.com/fogleman/ease"
)

// EasingFunc 缓动函数：输入进度 t ∈ [0, 1]，返回缓动后的进度
type EasingFunc func(t float64) float64

// Easing Functions (缓动函数)
//
// 缓动函数用于重塑动画混合窗口的进度曲线（RuntimeAnimation 的
// blending factor），使权重过渡看起来更自然。
// 曲线实现来自 github.com/fogleman/ease。
//
// 参考：https://easings.net/

// EaseLinear 线性缓动（无缓动）
func EaseLinear(t float64) float64 {
	return ease.Linear(t)
}

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return ease.OutCubic(t)
}

// EaseInCubic 三次方缓入
// 公式：f(t) = t³
func EaseInCubic(t float64) float64 {
	return ease.InCubic(t)
}

// EaseInOutCubic 三次方缓入缓出
func EaseInOutCubic(t float64) float64 {
	return ease.InOutCubic(t)
}

// EaseOutQuad 二次方缓出
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return ease.OutQuad(t)
}

// EaseInQuad 二次方缓入
// 公式：f(t) = t²
func EaseInQuad(t float64) float64 {
	return ease.InQuad(t)
}

// EaseOutExpo 指数缓出
// 公式：f(t) = 1 - 2^(-10t)，t >= 1 时精确返回 1
func EaseOutExpo(t float64) float64 {
	if t >= 1.0 {
		return 1.0
	}
	return ease.OutExpo(t)
}

// easings 配置文件中可用的缓动名称
// 名称不区分大小写，下划线和连字符被忽略（"in_out_quad" == "InOutQuad"）
var easings = map[string]EasingFunc{
	"linear":       EaseLinear,
	"inquad":       EaseInQuad,
	"outquad":      EaseOutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      EaseInCubic,
	"outcubic":     EaseOutCubic,
	"inoutcubic":   EaseInOutCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"inexpo":       ease.InExpo,
	"outexpo":      EaseOutExpo,
	"inoutexpo":    ease.InOutExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
}

// EasingByName 按名称查找缓动函数
//
// 参数：
//   - name: 缓动名称（如 "out_quad"、"InOutCubic"）；空字符串表示不使用缓动
//
// 返回：
//   - EasingFunc: 缓动函数，name 为空时返回 nil（线性）
//   - error: 名称未知时返回错误
func EasingByName(name string) (EasingFunc, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(name))
	if key == "" {
		return nil, nil
	}
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}
