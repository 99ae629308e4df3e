// Package http は外部API（Twelve Data、承認通知のWebhookなど）向けのHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API呼び出し用のHTTPクライアントを作成します。
// http.DefaultClient にはタイムアウトがないため、外部呼び出しには必ずこれを使います。
//
// timeout はリクエスト全体（接続、TLS、レスポンスボディの読み取りまで）の上限です。
// 呼び出し先は数ホストに限られるため、ホストあたりのアイドル接続を多めに保持します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
