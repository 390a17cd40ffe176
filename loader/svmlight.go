// Package loader 负责把外部数据物化为 core.DataSet。
//
// 核心对数据来源没有立场，只约定形状；本包提供两条入口：
// SVMLight 文本格式（LETOR 语料的事实标准）与 Feast 在线特征补全。
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/ltrkit/core"
)

// SVMLight 解析 SVM-light / LETOR 文本格式：
//
//	<label> qid:<qid> <index1>:<value1> <index2>:<value2> ... # <description>
//
// 特征下标从 1 开始，允许稀疏（缺失的下标补 0）。
type SVMLight struct{}

// ParseDataPoint 解析单行。
func (SVMLight) ParseDataPoint(line string) (core.DataPoint, error) {
	var dp core.DataPoint

	// '#' 之后是可选的描述
	body, description, found := strings.Cut(line, "#")
	if found {
		dp.Description = strings.TrimSpace(description)
	}

	fields := strings.Fields(body)
	if len(fields) < 2 {
		return dp, core.ErrParse(fmt.Sprintf("svmlight: malformed line %q", line))
	}

	label, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return dp, core.ErrParse(fmt.Sprintf("svmlight: invalid label %q", fields[0]))
	}
	dp.Label = uint8(label)

	qidStr, ok := strings.CutPrefix(fields[1], "qid:")
	if !ok {
		return dp, core.ErrParse(fmt.Sprintf("svmlight: missing qid in %q", line))
	}
	qid, err := strconv.ParseUint(qidStr, 10, 64)
	if err != nil {
		return dp, core.ErrParse(fmt.Sprintf("svmlight: invalid qid %q", qidStr))
	}
	dp.QueryID = qid

	var features []float32
	for _, field := range fields[2:] {
		indexStr, valueStr, found := strings.Cut(field, ":")
		if !found {
			return dp, core.ErrParse(fmt.Sprintf("svmlight: invalid feature pair %q", field))
		}
		index, err := strconv.Atoi(indexStr)
		if err != nil || index < 1 {
			return dp, core.ErrParse(fmt.Sprintf("svmlight: invalid feature index %q", indexStr))
		}
		value, err := strconv.ParseFloat(valueStr, 32)
		if err != nil {
			return dp, core.ErrParse(fmt.Sprintf("svmlight: invalid feature value %q", valueStr))
		}
		if index > len(features) {
			grown := make([]float32, index)
			copy(grown, features)
			features = grown
		}
		features[index-1] = float32(value)
	}
	dp.Features = features

	return dp, nil
}

// ParseRankList 把一段文本解析为单个 RankList。
// 不检查 qid 是否一致，调用方自行保证；不确定时用 Load。
func (s SVMLight) ParseRankList(buffer string) (*core.RankList, error) {
	var points []core.DataPoint
	for _, line := range strings.Split(buffer, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		dp, err := s.ParseDataPoint(line)
		if err != nil {
			return nil, err
		}
		points = append(points, dp)
	}
	return core.NewRankList(points), nil
}

// Load 从 r 读取整个数据集，按 qid 的连续段切分 RankList。
// 同一 qid 分散在不连续的段落时会产生多个 RankList，与输入顺序保持一致。
func (s SVMLight) Load(r io.Reader) (core.DataSet, error) {
	var (
		dataset core.DataSet
		current []core.DataPoint
		qid     uint64
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		dp, err := s.ParseDataPoint(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(current) > 0 && dp.QueryID != qid {
			dataset = append(dataset, core.NewRankList(current))
			current = nil
		}
		qid = dp.QueryID
		current = append(current, dp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("svmlight read: %w", err)
	}
	if len(current) > 0 {
		dataset = append(dataset, core.NewRankList(current))
	}
	return dataset, nil
}

// LoadFile 从文件加载数据集。
func (s SVMLight) LoadFile(path string) (core.DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("svmlight open: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// Dump 把数据集写回 SVMLight 文本格式。
func (SVMLight) Dump(w io.Writer, ds core.DataSet) error {
	bw := bufio.NewWriter(w)
	for _, rl := range ds {
		for _, dp := range rl.Points() {
			if _, err := fmt.Fprintf(bw, "%d qid:%d", dp.Label, dp.QueryID); err != nil {
				return err
			}
			for i, v := range dp.Features {
				if _, err := fmt.Fprintf(bw, " %d:%g", i+1, v); err != nil {
					return err
				}
			}
			if dp.Description != "" {
				if _, err := fmt.Fprintf(bw, " # %s", dp.Description); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
