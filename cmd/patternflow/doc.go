// Copyright (c) PatternFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 PatternFlow 的可执行入口。

# 概述

cmd/patternflow 是模式目录工具链的命令行入口：目录浏览服务、
文档生成管线、清单校验和健康检查。程序支持 YAML 配置文件加载、
结构化日志（zap）和 Prometheus 指标采集。

# 主要能力

  - 子命令：serve（目录服务）、generate（文档生成）、validate、version、health
  - 目录服务：清单加载 + 变更监视 + websocket live reload
  - 生成管线：限流、重试、提示词缓存（Redis 或进程内）
  - 决策台账：服务生命周期事件记录到 ledger
  - 优雅关闭：信号监听 → HTTP Shutdown → 退出
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
