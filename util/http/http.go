package http

import (
	"context"
	"time"
)

// IClient 进程内共享的 HTTP 客户端抽象，远端抠图服务等协作方都走它
type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam 一次请求的全部参数
// Body 支持 io.Reader、[]byte 或任意可 JSON 序列化的值；
// Response 非 nil 时响应体按 JSON 反序列化进去
type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	Body       interface{}
	Response   interface{}

	// Timeout 单次请求超时，零值使用客户端默认值
	Timeout time.Duration
}
