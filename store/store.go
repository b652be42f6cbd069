// Package store 提供评分数据的存储实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.KeyValueStore 接口。
//
// 示例：
//
//	var kvStore core.KeyValueStore = store.NewMemoryStore()
//	kvStore, err := store.NewRedisStore("127.0.0.1:6379", 0)
package store
