package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - Store 错误：NOT_FOUND（实体没有摘要/正文）
//   - Feature 错误：UNKNOWN_EXTRACTOR（配置了未注册的抽取器）
//   - Model / Data 错误：INVALID_INPUT（单一类别训练集、无法解析的数据行）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNKNOWN_EXTRACTOR"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "model"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 让 errors.Is 按 Module + Code 比较，
// 这样带有具体消息的错误（例如包含抽取器名）也能匹配哨兵错误。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// GetDomainError 获取错误链上的 DomainError，没有则返回 nil
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

// IsDomainError 检查错误链上是否有 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
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
	ErrorCodeNotFound         = "NOT_FOUND"
	ErrorCodeUnknownExtractor = "UNKNOWN_EXTRACTOR"
	ErrorCodeInvalidInput     = "INVALID_INPUT"
	ErrorCodeInternalError    = "INTERNAL_ERROR"
)

// 模块名称常量
const (
	ModuleStore      = "store"
	ModuleFeature    = "feature"
	ModuleModel      = "model"
	ModuleData       = "data"
	ModuleExperiment = "experiment"
)

// 哨兵错误
var (
	// ErrEntityNotFound 表示实体在 EntityStore 中没有对应的文本
	ErrEntityNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: entity not found")

	// ErrStoreNotFound 表示 KV 存储中 key 不存在
	ErrStoreNotFound = ErrEntityNotFound

	// ErrUnknownExtractor 表示抽取器名未注册
	ErrUnknownExtractor = NewDomainError(ModuleFeature, ErrorCodeUnknownExtractor, "feature: unknown extractor name")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsUnknownExtractor 检查错误是否为 UNKNOWN_EXTRACTOR
func IsUnknownExtractor(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnknownExtractor
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
