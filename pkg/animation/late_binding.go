package animation

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/value"
)

// bindingKey 迟绑定按 (目标, 属性路径) 分组
type bindingKey struct {
	target target.Target
	path   string
}

// contribution 一次加权写入的快照
type contribution struct {
	value  value.Value
	weight float64
}

// lateBindingHolder 同一 tick 内写入同一属性的所有贡献
type lateBindingHolder struct {
	target        target.Target
	path          string
	property      target.Property
	originalValue value.Value

	totalWeight         float64
	totalAdditiveWeight float64
	animations          []contribution
	additive            []contribution
}

// lateBindingResolver 迟绑定混合器
//
// 加权动画在 tick 中只登记贡献，调度器在所有动画推进完成后调用 flush，
// 每个属性只写入一次最终值。持有者按首次登记的顺序处理，tick 结束后清空。
type lateBindingResolver struct {
	holders map[bindingKey]*lateBindingHolder
	order   []*lateBindingHolder
	// 矩阵是否分解为缩放/旋转/平移后混合
	matrixDecompose bool
}

func newLateBindingResolver(matrixDecompose bool) *lateBindingResolver {
	return &lateBindingResolver{
		holders:         make(map[bindingKey]*lateBindingHolder),
		matrixDecompose: matrixDecompose,
	}
}

// register 登记运行时动画本次 tick 的加权值
// 持有者的原始值取本 tick 第一个登记者在创建时捕获的原始值
func (r *lateBindingResolver) register(ra *RuntimeAnimation) {
	key := bindingKey{target: ra.target, path: ra.targetPath}
	h, ok := r.holders[key]
	if !ok {
		h = &lateBindingHolder{
			target:        ra.target,
			path:          ra.targetPath,
			property:      ra.property,
			originalValue: ra.originalValue,
		}
		r.holders[key] = h
		r.order = append(r.order, h)
	}

	c := contribution{value: ra.currentValue, weight: ra.weight}
	if ra.IsAdditive() {
		h.additive = append(h.additive, c)
		h.totalAdditiveWeight += c.weight
		return
	}
	h.animations = append(h.animations, c)
	h.totalWeight += c.weight
}

// pending 本 tick 等待提交的属性数
func (r *lateBindingResolver) pending() int {
	return len(r.order)
}

// flush 计算并写入所有属性的最终值，然后清空
func (r *lateBindingResolver) flush() {
	for _, h := range r.order {
		if h.originalValue == nil || h.property == nil {
			continue
		}
		var final value.Value
		switch h.originalValue.Kind() {
		case value.KindMatrix:
			if r.matrixDecompose {
				final = blendMatrices(h)
			} else {
				final = blendLinear(h)
			}
		case value.KindQuaternion:
			final = blendQuaternions(h)
		default:
			final = blendLinear(h)
		}

		h.property.Set(final)
		if dm, ok := h.target.(target.DirtyMarker); ok {
			dm.MarkAsDirty(h.path)
		}
	}

	clear(r.holders)
	clear(r.order)
	r.order = r.order[:0]
}

// ============================================================================
// 各类型的混合策略
// ============================================================================

// blendLinear 线性加权：权重和 W < 1 时原始值补足 (1-W)，否则按 W 归一化
// 叠加贡献最后按各自权重直接相加，不参与归一化
func blendLinear(h *lateBindingHolder) value.Value {
	var final value.Value
	rest := h.animations
	normalizer := 1.0
	if h.totalWeight < 1 {
		final = value.Scale(h.originalValue, 1-h.totalWeight)
	} else {
		normalizer = h.totalWeight
		first := rest[0]
		final = value.Scale(first.value, first.weight/normalizer)
		rest = rest[1:]
	}

	for _, c := range rest {
		if c.weight == 0 {
			continue
		}
		final = value.ScaleAndAdd(final, c.value, c.weight/normalizer)
	}
	for _, c := range h.additive {
		if c.weight == 0 {
			continue
		}
		final = value.ScaleAndAdd(final, c.value, c.weight)
	}
	return final
}

// blendQuaternions 四元数混合：覆盖贡献按权重链式 slerp，叠加贡献逐个旋转
func blendQuaternions(h *lateBindingHolder) value.Value {
	orig := h.originalValue.(value.Quaternion)
	if h.totalWeight == 0 && h.totalAdditiveWeight == 0 {
		return orig
	}

	cumulative := orig
	switch n := len(h.animations); {
	case h.totalWeight == 0 || n == 0:
	case n == 1:
		c := h.animations[0]
		cumulative = value.Slerp(orig, c.value.(value.Quaternion), min(1, h.totalWeight))
	case n == 2 && h.totalWeight >= 1:
		q0 := h.animations[0].value.(value.Quaternion)
		q1 := h.animations[1].value.(value.Quaternion)
		cumulative = value.Slerp(q0, q1, h.animations[1].weight/h.totalWeight)
	default:
		quats, weights := overrideInputs(h, orig)
		cumulative = slerpChain(quats, weights)
	}

	for _, c := range h.additive {
		if c.weight == 0 {
			continue
		}
		product := value.Multiply(cumulative, c.value.(value.Quaternion))
		cumulative = value.Slerp(cumulative, product, c.weight)
	}
	return cumulative
}

// blendMatrices 分解后混合：缩放和平移加权求和，旋转链式 slerp
// 叠加层依次作用：缩放相乘，旋转向乘积 slerp，平移按权重相加
func blendMatrices(h *lateBindingHolder) value.Value {
	orig := h.originalValue.(value.Matrix)
	if h.totalWeight == 0 && h.totalAdditiveWeight == 0 {
		return orig
	}

	// 单个满权重贡献且无叠加时直接使用，避免分解带来的误差
	if len(h.animations) == 1 && h.totalWeight >= 1 && len(h.additive) == 0 {
		return h.animations[0].value
	}

	origT, _ := value.DecomposeMatrix(orig)
	var parts []value.Transform
	var weights []float64
	if h.totalWeight < 1 {
		parts = append(parts, origT)
		weights = append(weights, 1-h.totalWeight)
	}
	normalizer := max(1, h.totalWeight)
	for _, c := range h.animations {
		if c.weight == 0 {
			continue
		}
		t, _ := value.DecomposeMatrix(c.value.(value.Matrix))
		parts = append(parts, t)
		weights = append(weights, c.weight/normalizer)
	}

	var scaling, translation mgl64.Vec3
	rotations := make([]value.Quaternion, len(parts))
	for i, t := range parts {
		scaling = scaling.Add(t.Scaling.Mul(weights[i]))
		translation = translation.Add(t.Translation.Mul(weights[i]))
		rotations[i] = t.Rotation
	}
	rotation := value.IdentityQuaternion()
	switch len(rotations) {
	case 0:
	case 1:
		rotation = rotations[0]
	default:
		rotation = slerpChain(rotations, weights)
	}

	for _, c := range h.additive {
		if c.weight == 0 {
			continue
		}
		t, _ := value.DecomposeMatrix(c.value.(value.Matrix))
		scaled := mgl64.Vec3{scaling[0] * t.Scaling[0], scaling[1] * t.Scaling[1], scaling[2] * t.Scaling[2]}
		scaling = scaling.Add(scaled.Sub(scaling).Mul(c.weight))
		rotation = value.Slerp(rotation, value.Multiply(rotation, t.Rotation), c.weight)
		translation = translation.Add(t.Translation.Mul(c.weight))
	}

	return value.ComposeMatrix(value.Transform{
		Scaling:     scaling,
		Rotation:    rotation,
		Translation: translation,
	})
}

// overrideInputs 收集四元数链式 slerp 的输入
// 权重和 W < 1 时原始值以 (1-W) 作为第一项，否则各权重除以 W
func overrideInputs(h *lateBindingHolder, orig value.Quaternion) ([]value.Quaternion, []float64) {
	quats := make([]value.Quaternion, 0, len(h.animations)+1)
	weights := make([]float64, 0, len(h.animations)+1)
	normalizer := 1.0
	if h.totalWeight < 1 {
		quats = append(quats, orig)
		weights = append(weights, 1-h.totalWeight)
	} else {
		normalizer = h.totalWeight
	}
	for _, c := range h.animations {
		quats = append(quats, c.value.(value.Quaternion))
		weights = append(weights, c.weight/normalizer)
	}
	return quats, weights
}

// slerpChain 增量 slerp：先按相对权重混合前两项，
// 之后每一项按 weight_i / 累计权重 向结果靠拢
func slerpChain(quats []value.Quaternion, weights []float64) value.Quaternion {
	if len(quats) == 1 {
		return quats[0]
	}
	cumulativeWeight := weights[0] + weights[1]
	t := 0.0
	if cumulativeWeight != 0 {
		t = weights[1] / cumulativeWeight
	}
	cumulative := value.Slerp(quats[0], quats[1], t)
	for i := 2; i < len(quats); i++ {
		cumulativeWeight += weights[i]
		if cumulativeWeight == 0 {
			continue
		}
		cumulative = value.Slerp(cumulative, quats[i], weights[i]/cumulativeWeight)
	}
	return cumulative
}
