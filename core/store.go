package core

import "context"

// KeyValueStore 是评分数据的存储领域接口，基于哈希表（Hash）操作。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 评分数据按用户存为 Hash：field 为物品名称，value 为评分。
// 目录数据不经过 KeyValueStore，每个请求直接重新读取表格文件。
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type KeyValueStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// HSet 写入 Hash 字段
	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 读取整个 Hash；key 不存在时返回空 map
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}
