// Package animrt 声明随模块一起分发的动画数据
//
// //go:embed 只能嵌入当前包目录及其子目录的文件，
// 因此 embed.FS 必须放在项目根目录（与 data/ 同级）。
// 命令行工具通过 embedded.Init(animrt.DataFS) 使用这些数据。
package animrt

import "embed"

// DataFS 包含 data/animations 下的 YAML 片段和 data/reanim 下的示例文件
//
//go:embed data/animations data/reanim
var DataFS embed.FS
