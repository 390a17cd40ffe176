package ensemble

// Status 标记一轮迭代的结论。
type Status string

const (
	StatusOK        Status = "OK"        // 训练分有提升，继续
	StatusBad       Status = "BAD"       // delta <= 0，本轮回滚并停止
	StatusSaturated Status = "SATURATED" // 特征连续入选达到上限，被永久排除
)

// IterationRecord 是一轮迭代的结构化记录，按发生顺序追加进 History。
// 被回滚的 BAD 轮也会留下记录。
type IterationRecord struct {
	Iteration  int     // 迭代序号，从 0 开始
	Feature    int     // 本轮选中的特征下标（从 1 开始）
	TrainScore float64 // 当前 ensemble 在训练集上的平均指标
	TrainDelta float64 // 相对上一轮训练分的变化
	ValScore   float64 // 验证集得分；无验证集时为 0
	ValDelta   float64 // 相对上一轮验证分的变化
	Status     Status
}

// ProgressSink 是每轮迭代的进度回调。渲染与落地由外部实现负责
// （如 progress.TableSink），核心不持有任何全局的日志/表格状态。
type ProgressSink interface {
	OnIteration(rec IterationRecord)
}

// SinkFunc 是 ProgressSink 的函数适配器。
type SinkFunc func(rec IterationRecord)

func (f SinkFunc) OnIteration(rec IterationRecord) { f(rec) }

// NopSink 丢弃所有进度记录，是未注入 sink 时的默认值。
type NopSink struct{}

func (NopSink) OnIteration(IterationRecord) {}
