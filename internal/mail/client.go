// Package mail はメール送信APIのクライアントを提供する。
// パスワード再設定トークンや問い合わせ通知のベストエフォート送信に使用する。
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Config はメール送信の設定。
type Config struct {
	Endpoint  string // 送信APIのエンドポイントURL。空の場合は送信をスキップする。
	APIKey    string
	FromEmail string
	FromName  string
	ToEmail   string // 通知の固定宛先
}

// Client はJSON形式のメール送信APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, config Config) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

// address はAPIリクエストの送信元・宛先表現。
type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sendRequest はAPIリクエストのボディ。
type sendRequest struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
}

// Send は指定宛先にヘッダー（件名）とメッセージを送信する。
// toが空の場合は設定の固定宛先（管理者通知用）に送る。
// エンドポイント未設定の場合はログを残してスキップする。
// 送信失敗はエラーとして返すが、呼び出し元で致命的に扱ってはならない。
func (c *Client) Send(ctx context.Context, to, header, message string) error {
	if c.config.Endpoint == "" {
		c.logger.Info("mail endpoint is not configured, skipping notification",
			slog.String("subject", header),
		)
		return nil
	}

	recipient := to
	if recipient == "" {
		recipient = c.config.ToEmail
	}

	body, err := json.Marshal(sendRequest{
		From:    address{Email: c.config.FromEmail, Name: c.config.FromName},
		To:      []address{{Email: recipient}},
		Subject: header,
		Text:    message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to call mail API",
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("mail API returned error status",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}
