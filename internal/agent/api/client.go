// Package api содержит HTTP-клиент для сервера регистрации пользователей.
//
// Клиент инкапсулирует базовый URL сервера (вместе с префиксом API,
// например "http://127.0.0.1:5000/api/v1") и настроенный http.Client.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/").
//   - По умолчанию добавляется заголовок Accept: application/json.
//   - Заголовок Content-Type: application/json добавляется только при наличии тела запроса.
//   - Пустое тело ответа (EOF при декодировании) не считается ошибкой.
//   - При ответах не 2xx возвращается *APIError с кодом и телом ответа.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Client реализует HTTP-клиент для общения с сервером.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт клиента. Собственного таймаута у клиента нет:
// время запроса ограничивает контекст вызывающего.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// APIError — ответ сервера с кодом не 2xx.
type APIError struct {
	StatusCode int
	Status     string
	// Body — тело ответа как есть (обычно JSON с описанием ошибки)
	Body string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return e.Status
	}
	return e.Body
}

// readAPIError читает тело ответа и упаковывает его в *APIError.
func readAPIError(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)
	return &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Body:       strings.TrimSpace(string(raw)),
	}
}

// decodeJSONOrOK декодирует JSON из r в resp. Пустое тело ошибкой не считается.
func decodeJSONOrOK(r io.Reader, resp any) error {
	if resp == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// PostJSON отправляет req в JSON и декодирует ответ в resp (если resp != nil).
func (c *Client) PostJSON(ctx context.Context, path string, req any, resp any) error {
	return c.do(ctx, http.MethodPost, path, req, resp)
}

// GetJSON выполняет GET и декодирует ответ в resp (если resp != nil).
func (c *Client) GetJSON(ctx context.Context, path string, resp any) error {
	return c.do(ctx, http.MethodGet, path, nil, resp)
}

func (c *Client) do(ctx context.Context, method, path string, req any, resp any) error {
	var body io.Reader
	if req != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return err
		}
		body = &buf
	}

	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIError(res)
	}

	// 204 — успех без тела
	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	return decodeJSONOrOK(res.Body, resp)
}
