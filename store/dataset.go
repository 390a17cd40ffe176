package store

import (
	"context"
	"fmt"

	"github.com/rushteam/ltrkit/core"
)

// DatasetStore 把解析/补全后的 DataSet 持久化到任意 core.Store：
// 每个 RankList 一个键（按位置编址，同一 qid 的多个分段不会互相覆盖），
// 外加一个 qid 索引键描述整体顺序。
//
// 存的是训练数据而非训练好的模型；大语料解析一次、多次复用。
type DatasetStore struct {
	Store core.Store
	Codec Codec
}

func NewDatasetStore(s core.Store) *DatasetStore {
	return &DatasetStore{Store: s}
}

func (d *DatasetStore) indexKey(name string) string {
	return "ltr:ds:" + name
}

func (d *DatasetStore) listKey(name string, pos int) string {
	return fmt.Sprintf("ltr:ds:%s:%d", name, pos)
}

// Save 整体写入数据集，ttl 单位秒（省略表示不过期）。
func (d *DatasetStore) Save(ctx context.Context, name string, ds core.DataSet, ttl ...int) error {
	qids := make([]uint64, ds.Len())
	kvs := make(map[string][]byte, ds.Len()+1)
	for i, rl := range ds {
		qids[i] = rl.QueryID()
		data, err := d.Codec.EncodeRankList(rl)
		if err != nil {
			return err
		}
		kvs[d.listKey(name, i)] = data
	}
	index, err := d.Codec.EncodeQueryIDs(qids)
	if err != nil {
		return err
	}
	kvs[d.indexKey(name)] = index

	if err := d.Store.BatchSet(ctx, kvs, ttl...); err != nil {
		return fmt.Errorf("dataset store save %q: %w", name, err)
	}
	return nil
}

// Load 按保存顺序还原数据集。name 不存在时返回 NOT_FOUND；
// 索引存在但某个列表键缺失（部分过期）同样视为 NOT_FOUND。
func (d *DatasetStore) Load(ctx context.Context, name string) (core.DataSet, error) {
	index, err := d.Store.Get(ctx, d.indexKey(name))
	if err != nil {
		return nil, err
	}
	qids, err := d.Codec.DecodeQueryIDs(index)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(qids))
	for i := range qids {
		keys[i] = d.listKey(name, i)
	}
	values, err := d.Store.BatchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("dataset store load %q: %w", name, err)
	}

	ds := make(core.DataSet, 0, len(keys))
	for _, key := range keys {
		data, ok := values[key]
		if !ok {
			return nil, core.ErrStoreNotFound
		}
		rl, err := d.Codec.DecodeRankList(data)
		if err != nil {
			return nil, err
		}
		ds = append(ds, rl)
	}
	return ds, nil
}

// Delete 删除数据集的索引键与全部列表键。
func (d *DatasetStore) Delete(ctx context.Context, name string) error {
	index, err := d.Store.Get(ctx, d.indexKey(name))
	if err != nil {
		if core.IsNotFound(err) {
			return nil
		}
		return err
	}
	qids, err := d.Codec.DecodeQueryIDs(index)
	if err != nil {
		return err
	}
	for i := range qids {
		if err := d.Store.Delete(ctx, d.listKey(name, i)); err != nil {
			return err
		}
	}
	return d.Store.Delete(ctx, d.indexKey(name))
}
