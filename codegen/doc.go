// Copyright (c) PatternFlow Authors.
// Licensed under the MIT License.

/*
Package codegen 实现模式文档生成管线。

# 概述

codegen 为目录清单中的每个模式执行一组生成步骤（README、用户故事、
示例文档），通过 llm.Provider 调用模型，将结果写入输出目录。管线
支持并发、限流、重试、响应缓存和基于修改时间的增量跳过。

# 核心接口/类型

  - Pipeline       — 生成管线（Run 为入口）
  - Step           — 单个生成步骤（提示词模板 + 输出文件名）
  - ResponseCache  — 响应缓存接口（进程内 / Redis 两种实现）
  - Report         — 一次运行的统计（generated / skipped / cache_hits / failed）

# 主要能力

  - 并发控制：errgroup 限制同时处理的模式数量，步骤按序执行
  - 幂等跳过：输出文件比模式更新时间新则跳过（--force 覆盖）
  - 提示词预算：超出 token 上限的提示词直接失败，不浪费调用
  - 指标采集：Prometheus 计数器记录步骤、缓存命中、重试与失败
*/
package codegen
