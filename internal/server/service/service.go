// Package service содержит бизнес-логику сервиса регистрации.
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
package service

import (
	"context"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_users_repo.go -package=mocks

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users UsersRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Users *UsersService
}

// NewServices собирает все сервисы приложения.
// cfg нужен UsersService (параметры хеширования пароля).
func NewServices(repos Repositories, cfg *config.Config, log *logger.Logger) *Services {
	return &Services{
		Users: NewUsersService(repos.Users, cfg, log),
	}
}

// UsersRepo — репозиторий пользователей.
//
// GetByID и GetByEmail возвращают (nil, nil), если пользователь не найден.
// Некорректный id — serr.ErrInvalidIdentifier, сбой хранилища — serr.ErrStore,
// нарушение уникальности email — serr.ErrAlreadyExists.
type UsersRepo interface {
	Create(ctx context.Context, name, email, password string) (models.InsertResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id, name, email, password string) (models.UpdateResult, error)
	Delete(ctx context.Context, id string) (models.DeleteResult, error)
	List(ctx context.Context) ([]models.User, error)
}
