package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/ltrkit/core"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()

	t.Run("set get delete", func(t *testing.T) {
		if err := ms.Set(ctx, "k1", []byte("v1")); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		got, err := ms.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("Get error = %v", err)
		}
		if string(got) != "v1" {
			t.Errorf("Get = %q, want v1", got)
		}

		if err := ms.Delete(ctx, "k1"); err != nil {
			t.Fatalf("Delete error = %v", err)
		}
		if _, err := ms.Get(ctx, "k1"); !core.IsNotFound(err) {
			t.Errorf("Get after delete error = %v, want NOT_FOUND", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, err := ms.Get(ctx, "nope"); !core.IsNotFound(err) {
			t.Errorf("Get(nope) error = %v, want NOT_FOUND", err)
		}
	})

	t.Run("ttl expiry", func(t *testing.T) {
		if err := ms.Set(ctx, "short", []byte("v"), 1); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		if _, err := ms.Get(ctx, "short"); err != nil {
			t.Fatalf("Get before expiry error = %v", err)
		}
		time.Sleep(1100 * time.Millisecond)
		if _, err := ms.Get(ctx, "short"); !core.IsNotFound(err) {
			t.Errorf("Get after expiry error = %v, want NOT_FOUND", err)
		}
	})

	t.Run("batch", func(t *testing.T) {
		kvs := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
		if err := ms.BatchSet(ctx, kvs); err != nil {
			t.Fatalf("BatchSet error = %v", err)
		}
		got, err := ms.BatchGet(ctx, []string{"a", "b", "missing"})
		if err != nil {
			t.Fatalf("BatchGet error = %v", err)
		}
		if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
			t.Errorf("BatchGet = %v, want a=1 b=2 and missing dropped", got)
		}
	})
}

func sampleDataSet() core.DataSet {
	return core.DataSet{
		core.NewRankList([]core.DataPoint{
			{Label: 1, QueryID: 1, Features: []float32{0.9, 0.1}, Description: "d1"},
			{Label: 0, QueryID: 1, Features: []float32{0.2, 0.8}},
		}),
		core.NewRankList([]core.DataPoint{
			{Label: 2, QueryID: 2, Features: []float32{0.7}},
		}),
		// qid 1 的第二个分段：位置编址保证不与第一段互相覆盖
		core.NewRankList([]core.DataPoint{
			{Label: 0, QueryID: 1, Features: []float32{0.3}},
		}),
	}
}

func TestCodec_RankListRoundTrip(t *testing.T) {
	var c Codec
	original := sampleDataSet()[0]

	data, err := c.EncodeRankList(original)
	if err != nil {
		t.Fatalf("EncodeRankList error = %v", err)
	}
	decoded, err := c.DecodeRankList(data)
	if err != nil {
		t.Fatalf("DecodeRankList error = %v", err)
	}

	if decoded.Len() != original.Len() || decoded.QueryID() != original.QueryID() {
		t.Fatalf("decoded len=%d qid=%d, want len=%d qid=%d",
			decoded.Len(), decoded.QueryID(), original.Len(), original.QueryID())
	}
	for i := 0; i < original.Len(); i++ {
		want, _ := original.Get(i)
		got, _ := decoded.Get(i)
		if got.Label != want.Label || got.Description != want.Description ||
			len(got.Features) != len(want.Features) {
			t.Errorf("point %d = %+v, want %+v", i, got, want)
		}
	}

	if _, err := c.DecodeRankList([]byte("not cbor")); err == nil {
		t.Error("DecodeRankList should fail on garbage input")
	}
}

func TestDatasetStore(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()
	ds := NewDatasetStore(ms)

	original := sampleDataSet()
	if err := ds.Save(ctx, "ohsumed", original); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	loaded, err := ds.Load(ctx, "ohsumed")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if loaded.Len() != original.Len() {
		t.Fatalf("loaded %d lists, want %d", loaded.Len(), original.Len())
	}
	for i := range original {
		if loaded[i].QueryID() != original[i].QueryID() || loaded[i].Len() != original[i].Len() {
			t.Errorf("list %d qid=%d len=%d, want qid=%d len=%d",
				i, loaded[i].QueryID(), loaded[i].Len(),
				original[i].QueryID(), original[i].Len())
		}
	}

	if _, err := ds.Load(ctx, "unknown"); !core.IsNotFound(err) {
		t.Errorf("Load(unknown) error = %v, want NOT_FOUND", err)
	}

	if err := ds.Delete(ctx, "ohsumed"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := ds.Load(ctx, "ohsumed"); !core.IsNotFound(err) {
		t.Errorf("Load after delete error = %v, want NOT_FOUND", err)
	}
	// 删除不存在的数据集是幂等的
	if err := ds.Delete(ctx, "ohsumed"); err != nil {
		t.Errorf("Delete twice error = %v, want nil", err)
	}
}

func TestDatasetStore_PartialLossIsNotFound(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()
	ds := NewDatasetStore(ms)

	if err := ds.Save(ctx, "partial", sampleDataSet()); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	// 模拟单个列表键过期
	if err := ms.Delete(ctx, "ltr:ds:partial:1"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := ds.Load(ctx, "partial"); !core.IsNotFound(err) {
		t.Errorf("Load with missing list key error = %v, want NOT_FOUND", err)
	}
}
