package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/rushteam/ltrkit/core"
)

// Codec 负责 RankList 的字节级编解码，存取走 CBOR：
// 二进制紧凑、自描述、跨语言，比手写字节布局省去版本演进的负担。
type Codec struct{}

// ranklistWire 是 RankList 的编码形态（RankList 本身不导出底层切片）。
type ranklistWire struct {
	Points []core.DataPoint `cbor:"points"`
}

// EncodeRankList 把 RankList 编码为 CBOR 字节串。
func (Codec) EncodeRankList(rl *core.RankList) ([]byte, error) {
	data, err := cbor.Marshal(ranklistWire{Points: rl.Points()})
	if err != nil {
		return nil, fmt.Errorf("encode ranklist: %w", err)
	}
	return data, nil
}

// DecodeRankList 从 CBOR 字节串还原 RankList。
func (Codec) DecodeRankList(data []byte) (*core.RankList, error) {
	var wire ranklistWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode ranklist: %w", err)
	}
	return core.NewRankList(wire.Points), nil
}

// EncodeQueryIDs 编码数据集的 qid 索引。
func (Codec) EncodeQueryIDs(qids []uint64) ([]byte, error) {
	data, err := cbor.Marshal(qids)
	if err != nil {
		return nil, fmt.Errorf("encode qid index: %w", err)
	}
	return data, nil
}

// DecodeQueryIDs 解码数据集的 qid 索引。
func (Codec) DecodeQueryIDs(data []byte) ([]uint64, error) {
	var qids []uint64
	if err := cbor.Unmarshal(data, &qids); err != nil {
		return nil, fmt.Errorf("decode qid index: %w", err)
	}
	return qids, nil
}
