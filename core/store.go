package core

import "context"

// Store 是字节级 KV 存储的领域接口，实现在 store 包（memory/redis）。
// ltrkit 用它缓存序列化后的数据集（见 store.DatasetStore）。
//
// 约定：
//   - 键不存在时 Get 返回 ErrStoreNotFound
//   - BatchGet 跳过不存在的键，不报错
//   - ttl 单位为秒，省略或 <=0 表示不过期
type Store interface {
	Name() string

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl ...int) error
	Delete(ctx context.Context, key string) error

	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)
	BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error

	Close() error
}
