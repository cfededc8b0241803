// Copyright (c) PatternFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 PatternFlow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 catalog、memory、ledger、
codegen、api 等上层模块提供统一的类型契约。跨包共享的结构体、枚举和
错误码均定义于此，以避免循环依赖。

# 核心类型

  - Pattern / Manifest — 模式目录条目与索引清单（index.json 的等价物）
  - PatternDocs        — 每个模式生成文档（README / 用户故事 / 示例）的路径
  - Maturity           — 模式成熟度（experimental / emerging / established）
  - Error / ErrorCode  — 结构化错误体系，含 HTTP 状态码与 Retryable 标记

# 主要能力

  - 错误工具链：WithCause / WithRetryable / IsRetryable / GetErrorCode
  - 目录检索：Pattern.Matches 提供大小写不敏感的关键词匹配
*/
package types
