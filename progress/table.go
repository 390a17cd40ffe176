// Package progress 提供训练进度的渲染实现。
// 核心只往 ProgressSink 里塞结构化记录，长什么样由这里决定。
package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/rushteam/ltrkit/ensemble"
)

// 各列宽度，与迭代表格的七列一一对应
var columnWidths = []int{9, 10, 11, 11, 11, 11, 11}

// TableSink 把迭代记录渲染成固定宽度的居中表格，逐行写入 w。
// 表头在第一条记录到来时输出一次。
type TableSink struct {
	w      io.Writer
	metric string

	headerWritten bool
	headerStyle   lipgloss.Style
	cellStyle     lipgloss.Style
}

// NewTableSink 创建表格渲染 sink。metric 用于表头列名（如 "MAP"、"P@5"）。
func NewTableSink(w io.Writer, metric string) *TableSink {
	return &TableSink{
		w:           w,
		metric:      metric,
		headerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).Align(lipgloss.Center),
		cellStyle:   lipgloss.NewStyle().Align(lipgloss.Center),
	}
}

func (t *TableSink) renderRow(style lipgloss.Style, cells []string) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = style.Width(columnWidths[i]).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (t *TableSink) writeHeader() {
	header := []string{
		"#Iter",
		"Feature",
		t.metric + "-T",
		"Improve-T",
		t.metric + "-V",
		"Improve-V",
		"Status",
	}
	fmt.Fprintln(t.w, t.renderRow(t.headerStyle, header))
}

func (t *TableSink) OnIteration(rec ensemble.IterationRecord) {
	if !t.headerWritten {
		t.writeHeader()
		t.headerWritten = true
	}
	row := []string{
		fmt.Sprintf("%d", rec.Iteration),
		fmt.Sprintf("%d", rec.Feature),
		fmt.Sprintf("%.5f", rec.TrainScore),
		fmt.Sprintf("%.5f", rec.TrainDelta),
		fmt.Sprintf("%.5f", rec.ValScore),
		fmt.Sprintf("%.5f", rec.ValDelta),
		string(rec.Status),
	}
	fmt.Fprintln(t.w, t.renderRow(t.cellStyle, row))
}

var _ ensemble.ProgressSink = (*TableSink)(nil)
