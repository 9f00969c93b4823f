package orderform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	orderapp "watchbox/application/order"
)

// SubmitPath 下单接口路径
const SubmitPath = "/api/submit-order"

const maxReplyBytes = 1 << 20

// Reply 下单接口的响应体
type Reply struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
	Field           string `json:"field,omitempty"`
	ClientRequestID string `json:"clientRequestId,omitempty"`
	Row             int    `json:"row,omitempty"`
	RequestID       string `json:"request_id,omitempty"`

	StatusCode int `json:"-"`
}

// ClientOption HTTP 客户端选项
type ClientOption func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLanguage 设置 Accept-Language，决定服务端消息语言
func WithLanguage(lang string) ClientOption {
	return func(c *Client) { c.lang = lang }
}

// Client POST /api/submit-order 的 HTTP 实现
type Client struct {
	endpoint string
	lang     string
	http     *http.Client
}

// NewClient baseURL 形如 https://shop.example
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + SubmitPath,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit 发送一次请求。无论状态码如何都解析响应体，结果只看 success 字段。
func (c *Client) Submit(ctx context.Context, req orderapp.SubmitOrderRequest) (*Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("orderform: encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("orderform: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.lang != "" {
		httpReq.Header.Set("Accept-Language", c.lang)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("orderform: post order: %w", err)
	}
	defer resp.Body.Close()

	var reply Reply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(&reply); err != nil {
		return nil, fmt.Errorf("orderform: decode reply (status %d): %w", resp.StatusCode, err)
	}
	reply.StatusCode = resp.StatusCode
	return &reply, nil
}
