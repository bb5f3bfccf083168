package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/crypto"
	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

// UsersService реализует бизнес-логику над пользователями.
//
// Единственное бизнес-правило — email уникален. Сервис проверяет его
// заранее, а уникальный индекс хранилища закрывает гонку двух
// одновременных регистраций.
type UsersService struct {
	users UsersRepo
	pass  crypto.Argon2Params
	log   *logger.Logger
}

// NewUsersService создаёт UsersService с зависимостями и настройками из конфига.
func NewUsersService(users UsersRepo, cfg *config.Config, log *logger.Logger) *UsersService {
	return &UsersService{
		users: users,
		pass:  crypto.ParamsFromConfig(cfg.Password.Argon2),
		log:   log,
	}
}

// Signup регистрирует нового пользователя.
//
// Входные данные уже провалидированы на HTTP-границе.
// Ошибки:
//   - Conflict "email <email> is taken", если email занят
//   - ошибки хранилища пробрасываются как есть
func (s *UsersService) Signup(ctx context.Context, name, email, password string) (models.InsertResult, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.InsertResult{}, err
	}
	if existing != nil {
		return models.InsertResult{}, s.emailTaken(email)
	}

	hash, err := crypto.HashPassword(password, s.pass)
	if err != nil {
		return models.InsertResult{}, serr.Internal(err)
	}

	res, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		// проверку выше обогнала параллельная регистрация
		if errors.Is(err, serr.ErrAlreadyExists) {
			return models.InsertResult{}, s.emailTaken(email)
		}
		return models.InsertResult{}, err
	}

	s.log.Info("user signed up",
		zap.String("id", res.InsertedID),
		zap.String("email", email),
	)
	return res, nil
}

// List возвращает всех пользователей. Порядок не гарантируется.
func (s *UsersService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Get возвращает пользователя по id или NotFound.
func (s *UsersService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, serr.NotFound(fmt.Sprintf("user %s not found", id))
	}
	return u, nil
}

// Update перезаписывает имя, email и пароль пользователя.
// Наружу по HTTP не выставлен.
func (s *UsersService) Update(ctx context.Context, id, name, email, password string) (models.UpdateResult, error) {
	hash, err := crypto.HashPassword(password, s.pass)
	if err != nil {
		return models.UpdateResult{}, serr.Internal(err)
	}

	res, err := s.users.Update(ctx, id, name, email, hash)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return models.UpdateResult{}, s.emailTaken(email)
		}
		return models.UpdateResult{}, err
	}
	return res, nil
}

// Delete удаляет пользователя. Наружу по HTTP не выставлен.
func (s *UsersService) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	return s.users.Delete(ctx, id)
}

func (s *UsersService) emailTaken(email string) error {
	s.log.Error("signup conflict", zap.String("email", email))
	return serr.Conflict(fmt.Sprintf("email %s is taken", email))
}
