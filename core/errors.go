package core

import "fmt"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 数据模型错误：FEATURE_INDEX_OUT_OF_BOUNDS, RANKLIST_INDEX_OUT_OF_BOUNDS
//   - 训练错误：NO_RANKERS
//   - 评估错误：EVALUATION_ERROR
//   - 加载/存储错误：PARSE_ERROR, NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "NO_RANKERS", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "core", "ensemble", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNoRankers           = "NO_RANKERS"                    // 训练结束时 ensemble 为空
	ErrorCodeFeatureOutOfBounds  = "FEATURE_INDEX_OUT_OF_BOUNDS"   // 特征下标为 0 或超出特征数
	ErrorCodeRankListOutOfBounds = "RANKLIST_INDEX_OUT_OF_BOUNDS"  // 列表下标/置换越界
	ErrorCodeEvaluation          = "EVALUATION_ERROR"              // 在空数据集上求指标
	ErrorCodeParse               = "PARSE_ERROR"                   // 文本格式解析失败
	ErrorCodeNotFound            = "NOT_FOUND"                     // 资源不存在
)

// 模块名称常量
const (
	ModuleCore     = "core"
	ModuleEval     = "eval"
	ModuleEnsemble = "ensemble"
	ModuleLoader   = "loader"
	ModuleStore    = "store"
)

// ErrNoRankers 表示 Fit 结束时没有任何 WeakRanker 被接受。
func ErrNoRankers() *DomainError {
	return NewDomainError(ModuleEnsemble, ErrorCodeNoRankers, "no rankers were built")
}

// ErrFeatureIndex 表示特征下标非法。特征下标从 1 开始，0 永远非法。
func ErrFeatureIndex(index int) *DomainError {
	return NewDomainError(ModuleCore, ErrorCodeFeatureOutOfBounds,
		fmt.Sprintf("feature index %d out of bounds", index))
}

// ErrRankListIndex 表示 RankList 下标或置换元素越界。
func ErrRankListIndex(index int) *DomainError {
	return NewDomainError(ModuleCore, ErrorCodeRankListOutOfBounds,
		fmt.Sprintf("ranklist index %d out of bounds", index))
}

// ErrEvaluation 表示指标计算失败（如空数据集）。
func ErrEvaluation(message string) *DomainError {
	return NewDomainError(ModuleEval, ErrorCodeEvaluation, message)
}

// ErrParse 表示 SVMLight 等文本格式解析失败。
func ErrParse(message string) *DomainError {
	return NewDomainError(ModuleLoader, ErrorCodeParse, message)
}

// ErrStoreNotFound 是 Store 的统一 NOT_FOUND 错误。
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "key not found")

// 通用错误检查函数

// IsNoRankers 检查错误是否为 NO_RANKERS
func IsNoRankers(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNoRankers
	}
	return false
}

// IsFeatureIndexOutOfBounds 检查错误是否为 FEATURE_INDEX_OUT_OF_BOUNDS
func IsFeatureIndexOutOfBounds(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeFeatureOutOfBounds
	}
	return false
}

// IsRankListIndexOutOfBounds 检查错误是否为 RANKLIST_INDEX_OUT_OF_BOUNDS
func IsRankListIndexOutOfBounds(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeRankListOutOfBounds
	}
	return false
}

// IsEvaluationError 检查错误是否为 EVALUATION_ERROR
func IsEvaluationError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeEvaluation
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
