package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/logging"
)

// errorResponse 是统一错误响应体。
type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Attribute string `json:"attribute,omitempty"`
}

const (
	codeInternal = "INTERNAL"
	codeTimeout  = "TIMEOUT"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // 响应写入失败无法恢复
	w.Write(body)
}

// respondError 按错误类型映射状态码并写出错误响应。
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", body.Error).Msg("request failed")
	}
	respondJSON(w, status, body)
}

// statusFor 集中维护领域错误码到 HTTP 状态码的映射。
func statusFor(err error) (int, errorResponse) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorResponse{Error: codeTimeout, Message: "request timed out"}
	}
	de := core.GetDomainError(err)
	if de == nil {
		return http.StatusInternalServerError, errorResponse{Error: codeInternal, Message: "internal error"}
	}
	body := errorResponse{Error: de.Code, Message: de.Error(), Attribute: de.Attribute}
	switch de.Code {
	case core.ErrorCodeInvalidPayload:
		return http.StatusBadRequest, body
	case core.ErrorCodeMissingAttribute:
		return http.StatusUnprocessableEntity, body
	case core.ErrorCodeNotFound:
		return http.StatusNotFound, body
	default:
		// DATA_SOURCE / SCHEMA_MISMATCH / DIMENSION_MISMATCH：服务端数据或接线问题
		return http.StatusInternalServerError, body
	}
}
