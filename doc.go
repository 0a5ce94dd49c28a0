// Package baikerank 是面向百科实体检索的排序实验工具包。
//
// 设计要点：
// - Registry-first: 特征抽取器按名注册，实验以抽取器组合为单位
// - 一次实验 = K 折交叉验证 + 全量训练 + held-out 评估，结果写入 SQLite 实验库
// - 排序链路复用 Pipeline/Node：rank.ModelNode 打分排序，rerank 截断
//
// 目录：
//   - core：领域类型与错误（Subtask、QueryGroup、Item、DomainError）
//   - store：实体库（SQLite 百科库 / Memory / Redis，带 LRU 缓存）
//   - feature：特征抽取器与注册表
//   - model：向量化 + L2 逻辑回归，模型持久化
//   - eval / experiment：MAP 评估、交叉验证、实验记录
//   - dataio / report：数据读写、报告渲染
//   - cmd/baikerank：命令行入口（run / export / summary / extractors）
package baikerank
