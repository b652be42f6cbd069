package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - Attribute 记录出错的属性名（缺失属性、列不匹配时填写）
//   - Err 保存底层错误，支持 errors.Is / errors.As
//
// 使用场景：
//   - Catalog 错误：DATA_SOURCE, SCHEMA_MISMATCH
//   - Feature 错误：MISSING_ATTRIBUTE
//   - Rank 错误：DIMENSION_MISMATCH
//   - Service 错误：INVALID_PAYLOAD, NOT_FOUND
type DomainError struct {
	Code      string // 错误代码（如 "DATA_SOURCE", "MISSING_ATTRIBUTE"）
	Message   string // 错误消息
	Module    string // 模块名称（如 "catalog", "feature", "rank"）
	Attribute string // 相关属性名（可选）
	Err       error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound = "NOT_FOUND" // 资源不存在

	// 推荐链路错误代码
	ErrorCodeDataSource        = "DATA_SOURCE"        // 数据源缺失/不可读
	ErrorCodeSchemaMismatch    = "SCHEMA_MISMATCH"    // 目录数据与 schema 不一致
	ErrorCodeMissingAttribute  = "MISSING_ATTRIBUTE"  // 偏好缺少 schema 属性
	ErrorCodeInvalidPayload    = "INVALID_PAYLOAD"    // 请求体格式错误
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH" // 向量维度不一致（内部缺陷）
)

// 模块名称常量
const (
	ModuleCatalog = "catalog" // 目录加载模块
	ModuleFeature = "feature" // 特征模块
	ModuleRank    = "rank"    // 排序模块
	ModuleService = "service" // 服务模块
)

// DataSourceError 表示目录数据源不存在或不可读。
func DataSourceError(source string, err error) *DomainError {
	return &DomainError{
		Module:  ModuleCatalog,
		Code:    ErrorCodeDataSource,
		Message: fmt.Sprintf("catalog: data source %q unavailable", source),
		Err:     err,
	}
}

// SchemaMismatchError 表示目录数据缺少或损坏了 schema 声明的属性。
func SchemaMismatchError(attribute, message string) *DomainError {
	return &DomainError{
		Module:    ModuleCatalog,
		Code:      ErrorCodeSchemaMismatch,
		Message:   "catalog: " + message,
		Attribute: attribute,
	}
}

// MissingAttributeError 表示属性映射缺少 schema 中的某个属性。
func MissingAttributeError(attribute string) *DomainError {
	return &DomainError{
		Module:    ModuleFeature,
		Code:      ErrorCodeMissingAttribute,
		Message:   fmt.Sprintf("feature: missing attribute %q", attribute),
		Attribute: attribute,
	}
}

// InvalidPayloadError 表示请求体不是合法的 属性名 -> 数值 映射。
func InvalidPayloadError(message string) *DomainError {
	return &DomainError{
		Module:  ModuleService,
		Code:    ErrorCodeInvalidPayload,
		Message: "invalid payload: " + message,
	}
}

// DimensionMismatchError 表示用户向量与物品向量长度不一致。
// 共享 schema 保证长度一致，出现即为接线缺陷。
func DimensionMismatchError(itemID string, want, got int) *DomainError {
	return &DomainError{
		Module:  ModuleRank,
		Code:    ErrorCodeDimensionMismatch,
		Message: fmt.Sprintf("rank: item %q has dimension %d, want %d", itemID, got, want),
	}
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsDataSource 检查错误是否为 DATA_SOURCE
func IsDataSource(err error) bool { return hasCode(err, ErrorCodeDataSource) }

// IsSchemaMismatch 检查错误是否为 SCHEMA_MISMATCH
func IsSchemaMismatch(err error) bool { return hasCode(err, ErrorCodeSchemaMismatch) }

// IsMissingAttribute 检查错误是否为 MISSING_ATTRIBUTE
func IsMissingAttribute(err error) bool { return hasCode(err, ErrorCodeMissingAttribute) }

// IsInvalidPayload 检查错误是否为 INVALID_PAYLOAD
func IsInvalidPayload(err error) bool { return hasCode(err, ErrorCodeInvalidPayload) }

// IsDimensionMismatch 检查错误是否为 DIMENSION_MISMATCH
func IsDimensionMismatch(err error) bool { return hasCode(err, ErrorCodeDimensionMismatch) }
