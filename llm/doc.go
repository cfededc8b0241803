// Copyright (c) PatternFlow Authors.
// Licensed under the MIT License.

/*
Package llm 提供大语言模型补全的统一接口与实现。

# 概述

llm 定义 Provider 接口，将模型厂商差异收敛到一个补全契约之后，
供 codegen 管线与其他需要生成文本的模块使用。子包 retry 提供
指数退避重试，子包 tokenizer 提供 token 计数。

# 核心接口/类型

  - Provider       — 补全接口（Name / Completion / HealthCheck）
  - Request / Response / Message / Usage — 补全请求与响应模型
  - AnthropicProvider — Anthropic Messages API 实现
  - StaticProvider    — 离线实现，回显提示词，用于演示与测试

# 主要能力

  - 错误映射：HTTP 状态码 → 结构化错误码，429/5xx 标记为可重试
  - 限流包装：NewRateLimited 用令牌桶约束上游请求速率
  - 系统提示词：自动从消息列表中提取 system 角色消息
*/
package llm
