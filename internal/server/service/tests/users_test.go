package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

// создаём сервис
func newUsersService(t *testing.T) (*service.UsersService, *mocks.MockUsersRepo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)

	svc := service.NewServices(service.Repositories{Users: users}, testConfig(), logger.NewNop())
	return svc.Users, users
}

// лёгкие параметры argon2, чтобы тесты не тормозили
func testConfig() *config.Config {
	return &config.Config{
		Password: config.PasswordConfig{
			Argon2: config.Argon2Config{
				Time:      1,
				MemoryKiB: 8 * 1024,
				Threads:   1,
				KeyLen:    32,
				SaltLen:   16,
			},
		},
	}
}

// Успех: пароль уходит в хранилище хэшем
func TestUsersService_Signup_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	var stored string
	gomock.InOrder(
		users.EXPECT().GetByEmail(ctx, "ann@example.com").Return(nil, nil),
		users.EXPECT().
			Create(ctx, "Ann", "ann@example.com", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, password string) (models.InsertResult, error) {
				stored = password
				return models.InsertResult{InsertedID: "65f000000000000000000001", Acknowledged: true}, nil
			}),
	)

	res, err := svc.Signup(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "65f000000000000000000001", res.InsertedID)
	require.True(t, res.Acknowledged)

	require.NotEqual(t, "secret1", stored)
	ok, err := crypto.VerifyPassword("secret1", stored)
	require.NoError(t, err)
	require.True(t, ok)
}

// Email уже занят: до Create не доходим
func TestUsersService_Signup_EmailTaken(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().
		GetByEmail(ctx, "ann@example.com").
		Return(&models.User{ID: "1", Name: "Ann", Email: "ann@example.com"}, nil)

	_, err := svc.Signup(ctx, "Ann", "ann@example.com", "secret1")

	require.ErrorIs(t, err, serr.ErrConflict)
	require.Equal(t, "email ann@example.com is taken", err.Error())
}

// Гонка: проверка прошла, но уникальный индекс сработал
func TestUsersService_Signup_DuplicateKeyIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().GetByEmail(ctx, "ann@example.com").Return(nil, nil)
	users.EXPECT().
		Create(ctx, "Ann", "ann@example.com", gomock.Any()).
		Return(models.InsertResult{}, serr.ErrAlreadyExists)

	_, err := svc.Signup(ctx, "Ann", "ann@example.com", "secret1")

	require.Equal(t, serr.KindConflict, serr.KindOf(err))
	require.Equal(t, "email ann@example.com is taken", err.Error())
}

// Ошибка хранилища пробрасывается без изменений
func TestUsersService_Signup_StoreError(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	storeErr := serr.Store("find user by email", errors.New("connection refused"))
	users.EXPECT().GetByEmail(ctx, "ann@example.com").Return(nil, storeErr)

	_, err := svc.Signup(ctx, "Ann", "ann@example.com", "secret1")

	require.ErrorIs(t, err, storeErr)
	require.ErrorIs(t, err, serr.ErrStore)
}

func TestUsersService_Signup_CreateFails(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	storeErr := serr.Store("insert user", errors.New("write failed"))
	users.EXPECT().GetByEmail(ctx, "ann@example.com").Return(nil, nil)
	users.EXPECT().Create(ctx, "Ann", "ann@example.com", gomock.Any()).Return(models.InsertResult{}, storeErr)

	_, err := svc.Signup(ctx, "Ann", "ann@example.com", "secret1")
	require.ErrorIs(t, err, serr.ErrStore)
}

func TestUsersService_List(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	want := []models.User{
		{ID: "1", Name: "Ann", Email: "ann@example.com"},
		{ID: "2", Name: "Bob", Email: "bob@example.com"},
	}
	users.EXPECT().List(ctx).Return(want, nil)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// Пустое хранилище — пустой массив, а не nil (в JSON будет [])
func TestUsersService_List_EmptyIsNotNil(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().List(ctx).Return(nil, nil)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got, 0)
}

func TestUsersService_List_Error(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().List(ctx).Return(nil, serr.Store("list users", errors.New("boom")))

	_, err := svc.List(ctx)
	require.ErrorIs(t, err, serr.ErrStore)
}

func TestUsersService_Get(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().GetByID(ctx, "1").Return(&models.User{ID: "1", Name: "Ann"}, nil)
	users.EXPECT().GetByID(ctx, "2").Return(nil, nil)
	users.EXPECT().GetByID(ctx, "bad").Return(nil, serr.InvalidIdentifier("bad", errors.New("not hex")))

	u, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "Ann", u.Name)

	_, err = svc.Get(ctx, "2")
	require.ErrorIs(t, err, serr.ErrNotFound)

	_, err = svc.Get(ctx, "bad")
	require.ErrorIs(t, err, serr.ErrInvalidIdentifier)
}

func TestUsersService_Update_HashesPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().
		Update(ctx, "1", "Ann", "ann@example.com", gomock.Not("secret1")).
		Return(models.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	res, err := svc.Update(ctx, "1", "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, int64(1), res.ModifiedCount)
}

func TestUsersService_Update_EmailTaken(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().
		Update(ctx, "1", "Ann", "bob@example.com", gomock.Any()).
		Return(models.UpdateResult{}, serr.ErrAlreadyExists)

	_, err := svc.Update(ctx, "1", "Ann", "bob@example.com", "secret1")
	require.ErrorIs(t, err, serr.ErrConflict)
}

func TestUsersService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, users := newUsersService(t)

	users.EXPECT().Delete(ctx, "1").Return(models.DeleteResult{DeletedCount: 1}, nil)

	res, err := svc.Delete(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, int64(1), res.DeletedCount)
}
