package loader

import (
	"context"
	"fmt"
	"log/slog"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/ltrkit/core"
)

// FeastClient 是在线特征获取的最小接口，*feastsdk.GrpcClient 天然满足。
// 抽成接口便于测试时注入假实现。
type FeastClient interface {
	GetOnlineFeatures(ctx context.Context, req *feastsdk.OnlineFeaturesRequest) (*feastsdk.OnlineFeaturesResponse, error)
}

// FeastEnricher 用 Feast Feature Store 的在线特征补全数据集：
// 以 DataPoint 的 QueryID 作为实体键取回特征，按请求顺序追加到特征向量末尾。
//
// 典型用法是把文本语料里没有的实时统计特征（点击率、曝光量等）
// 在训练前拼进数据集。
type FeastEnricher struct {
	Client    FeastClient
	Project   string
	EntityKey string   // 实体键名，如 "query_id"
	Features  []string // 特征全名列表，如 "query_stats:ctr"

	Logger *slog.Logger
}

// Enrich 原地补全 ds 中每条样本的特征向量。
// 单条样本的特征缺失按 0.0 追加并记日志，不中断整体流程。
func (e *FeastEnricher) Enrich(ctx context.Context, ds core.DataSet) error {
	if e.Client == nil || len(e.Features) == 0 {
		return nil
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, rl := range ds {
		points := rl.Points()
		if len(points) == 0 {
			continue
		}

		rows := make([]feastsdk.Row, len(points))
		for i := range points {
			rows[i] = feastsdk.Row{
				e.EntityKey: feastsdk.Int64Val(int64(points[i].QueryID)),
			}
		}

		resp, err := e.Client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
			Features: e.Features,
			Entities: rows,
			Project:  e.Project,
		})
		if err != nil {
			return fmt.Errorf("feast get online features: %w", err)
		}

		respRows := resp.Rows()
		if len(respRows) != len(points) {
			return fmt.Errorf("feast response row count mismatch: expected %d, got %d",
				len(points), len(respRows))
		}

		for i := range points {
			for _, name := range e.Features {
				value, ok := valueToFloat32(respRows[i][name])
				if !ok {
					logger.Warn("feast feature missing, appended as zero",
						"feature", name, "qid", points[i].QueryID)
				}
				points[i].Features = append(points[i].Features, value)
			}
		}
	}
	return nil
}

// valueToFloat32 把 Feast 的 proto Value 转成特征值；无法转换时返回 (0, false)。
func valueToFloat32(v *feasttypes.Value) (float32, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.GetVal().(type) {
	case *feasttypes.Value_FloatVal:
		return val.FloatVal, true
	case *feasttypes.Value_DoubleVal:
		return float32(val.DoubleVal), true
	case *feasttypes.Value_Int32Val:
		return float32(val.Int32Val), true
	case *feasttypes.Value_Int64Val:
		return float32(val.Int64Val), true
	case *feasttypes.Value_BoolVal:
		if val.BoolVal {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
