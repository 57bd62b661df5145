package components

// AnimationAction 动画命令类型
type AnimationAction int

const (
	// ActionPlay 播放片段(默认)
	ActionPlay AnimationAction = iota
	// ActionStop 停止片段；ClipNames 为空时停止实体上的全部动画
	ActionStop
	// ActionPause 暂停实体上的全部动画
	ActionPause
	// ActionResume 恢复实体上被暂停的动画
	ActionResume
	// ActionSetWeight 修改正在播放的片段的权重
	ActionSetWeight
)

// String 返回命令类型的字符串表示(用于日志)
func (a AnimationAction) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionStop:
		return "stop"
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionSetWeight:
		return "set_weight"
	default:
		return "unknown"
	}
}

// AnimationCommandComponent 动画播放命令组件(纯数据)
//
// 设计目的:
//
//	解除系统间的直接耦合,使动画播放请求通过 ECS 组件机制传递
//
// 使用场景:
//  1. 播放配置化的片段 (ClipNames，来自 data/animations/*.yaml)
//  2. 以指定权重叠加播放多个片段(混合)
//  3. 停止、暂停、恢复、调整权重
//
// 生命周期:
//  1. 其他系统或工具添加此组件到实体
//  2. AnimationSystem 在 Update() 中查询并执行命令
//  3. 执行后标记 Processed = true
//
// 示例:
//
//	// 场景1: 直接播放行走循环
//	ecs.AddComponent(em, heroID, &AnimationCommandComponent{
//	    ClipNames: []string{"walk"},
//	    Loop:      true,
//	})
//
//	// 场景2: 奔跑以 0.7 的权重参与混合
//	ecs.AddComponent(em, heroID, &AnimationCommandComponent{
//	    ClipNames: []string{"run"},
//	    Loop:      true,
//	    Weighted:  true,
//	    Weight:    0.7,
//	})
//
// 注意事项:
//   - 组件只包含数据,不包含方法(符合 ECS 数据纯净性原则)
//   - 一个实体同时只应有一个 AnimationCommand(后续命令会覆盖前一个)
type AnimationCommandComponent struct {
	// ==========================================================================
	// 命令 (Command)
	// ==========================================================================

	// Action 命令类型，零值为 ActionPlay
	Action AnimationAction

	// ClipNames 片段名称列表
	// Play: 这些片段组成一个 Animatable，共享同一条时间线
	// Stop / SetWeight: 只作用于包含这些片段的 Animatable
	ClipNames []string

	// ComboName 配置中的片段组合名称(可选)
	// 非空时忽略 ClipNames，组合的 loop / range / speed 作为默认值
	ComboName string

	// ==========================================================================
	// 播放选项 (Play Options)
	// ==========================================================================

	// RangeName 命名帧区间(如 "anim_walk")，在第一个片段上查找
	// 为空时使用 From / To
	RangeName string

	// From, To 帧区间；都为 0 时使用片段的完整区间
	From float64
	To   float64

	// Loop 是否循环
	Loop bool

	// SpeedRatio 播放速度倍率，0 表示 1
	SpeedRatio float64

	// Weighted 是否以加权方式播放
	// false: 直接写入，不参与混合(Weight 被忽略)
	// true: 以 Weight 加权混合，同一属性的多个加权动画在每帧末尾统一提交
	Weighted bool

	// Weight 混合权重 [0, 1]，Play(Weighted) 和 SetWeight 使用
	Weight float64

	// Additive 叠加模式，以静止姿态为基准叠加差值
	Additive bool

	// StopCurrent 播放前停止实体上已有的动画
	StopCurrent bool

	// KeepOnEnd 非循环片段播放结束后保留 Animatable(可以再次 Restart)
	KeepOnEnd bool

	// Hierarchy 在实体自身及其所有子孙实体(HierarchyComponent)上播放
	Hierarchy bool

	// ==========================================================================
	// 执行状态 (Execution State)
	// ==========================================================================

	// Processed 是否已被 AnimationSystem 处理
	Processed bool
}
