// Package conv 提供数值类型转换工具。
package conv

import "math"

// numberLike 兼容 json.Number（encoding/json 与 goccy/go-json 的 UseNumber 模式）。
type numberLike interface {
	Float64() (float64, error)
}

// ToNumber 严格的数值转换：只接受数值类型，bool/string/nil 以及 NaN、Inf 均返回 false。
// 用于校验请求体中的偏好权重。
func ToNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case numberLike:
		n, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
