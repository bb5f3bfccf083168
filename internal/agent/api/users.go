// Методы клиента для работы с пользователями: регистрация и список.
package api

import (
	"context"

	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

// SignupRequest описывает тело запроса регистрации.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup регистрирует пользователя (POST /signup) и возвращает
// подтверждение вставки с новым идентификатором.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (models.InsertResult, error) {
	var resp models.InsertResult
	err := c.PostJSON(ctx, "/signup", req, &resp)
	return resp, err
}

// ListUsers возвращает всех пользователей (GET /).
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp []models.User
	if err := c.GetJSON(ctx, "/", &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []models.User{}
	}
	return resp, nil
}
