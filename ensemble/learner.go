package ensemble

import (
	"context"

	"github.com/rushteam/ltrkit/ranker"
)

// Learner 是可训练排序模型的统一抽象：先 Fit，之后本身就是一个 Ranker。
// Score / ValidationScore 在成功 Fit 之前返回 NO_RANKERS。
type Learner interface {
	ranker.Ranker

	Fit(ctx context.Context) error
	Score() (float64, error)
	ValidationScore() (float64, error)
	History() []IterationRecord
}
