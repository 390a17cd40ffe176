package eval

import (
	"fmt"

	"github.com/rushteam/ltrkit/core"
)

// Precision 是 P@K：前 K 位中 Label == 1 的文档占比。
// 注意这里是精确匹配而非 Label > 0，是刻意收窄的相关性定义。
// K == 0 时得 0。
type Precision struct {
	K int
}

func NewPrecision(k int) *Precision {
	return &Precision{K: k}
}

func (p *Precision) Name() string { return fmt.Sprintf("P@%d", p.K) }

func (p *Precision) EvaluateRankList(rl *core.RankList) float64 {
	if p.K == 0 {
		return 0
	}
	hits := 0.0
	for i := 0; i < p.K; i++ {
		dp, err := rl.Get(i)
		if err != nil {
			break
		}
		if dp.Label == 1 {
			hits++
		}
	}
	return hits / float64(p.K)
}
