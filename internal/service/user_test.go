package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/service"
)

func newUserService(users *mockUserRepo, follows *mockFollowRepo) *service.UserService {
	svc := service.NewUserService(users, follows)
	svc.UseMinBcryptCost()
	return svc
}

func validRegistration() domain.Registration {
	return domain.Registration{
		Email:     "chef@example.com",
		Username:  "chef.vasya",
		FirstName: "Vasya",
		LastName:  "Pupkin",
		Password:  "s3cret-pass",
	}
}

// ---- Register --------------------------------------------------------------

func TestUserService_Register_HashesPassword(t *testing.T) {
	var stored domain.User
	svc := newUserService(&mockUserRepo{
		create: func(_ context.Context, u domain.User) (domain.User, error) {
			stored = u
			u.ID = uuid.New()
			return u, nil
		},
	}, nil)

	got, err := svc.Register(context.Background(), validRegistration())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestUserService_Register_TrimsFields(t *testing.T) {
	var stored domain.User
	svc := newUserService(&mockUserRepo{
		create: func(_ context.Context, u domain.User) (domain.User, error) {
			stored = u
			return u, nil
		},
	}, nil)
	reg := validRegistration()
	reg.Email = "  chef@example.com "
	reg.Username = " chef "

	_, err := svc.Register(context.Background(), reg)

	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", stored.Email)
	assert.Equal(t, "chef", stored.Username)
}

func TestUserService_Register_Validation(t *testing.T) {
	cases := map[string]func(r *domain.Registration){
		"empty email":         func(r *domain.Registration) { r.Email = "" },
		"malformed email":     func(r *domain.Registration) { r.Email = "not-an-email" },
		"display name email":  func(r *domain.Registration) { r.Email = "Chef <chef@example.com>" },
		"long email":          func(r *domain.Registration) { r.Email = strings.Repeat("a", 250) + "@x.io" },
		"empty username":      func(r *domain.Registration) { r.Username = "" },
		"username with space": func(r *domain.Registration) { r.Username = "two words" },
		"reserved username":   func(r *domain.Registration) { r.Username = "me" },
		"long username":       func(r *domain.Registration) { r.Username = strings.Repeat("a", 151) },
		"long first name":     func(r *domain.Registration) { r.FirstName = strings.Repeat("a", 151) },
		"empty password":      func(r *domain.Registration) { r.Password = "" },
		"long password":       func(r *domain.Registration) { r.Password = strings.Repeat("p", 73) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newUserService(&mockUserRepo{}, nil)
			reg := validRegistration()
			mutate(&reg)

			_, err := svc.Register(context.Background(), reg)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUserService_Register_Conflict(t *testing.T) {
	svc := newUserService(&mockUserRepo{
		create: func(context.Context, domain.User) (domain.User, error) {
			return domain.User{}, domain.ErrConflict
		},
	}, nil)

	_, err := svc.Register(context.Background(), validRegistration())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ---- Get / List ------------------------------------------------------------

func TestUserService_Get_Anonymous(t *testing.T) {
	id := uuid.New()
	svc := newUserService(&mockUserRepo{
		getByID: func(_ context.Context, got uuid.UUID) (domain.User, error) {
			return domain.User{ID: got, Username: "cook"}, nil
		},
	}, &mockFollowRepo{}) // SubscribedTo must not be called

	p, err := svc.Get(context.Background(), nil, id)

	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.False(t, p.IsSubscribed)
}

func TestUserService_Get_SubscribedViewer(t *testing.T) {
	viewer, author := uuid.New(), uuid.New()
	svc := newUserService(&mockUserRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.User, error) {
			return domain.User{ID: id}, nil
		},
	}, &mockFollowRepo{
		subscribedTo: func(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
			assert.Equal(t, viewer, userID)
			assert.Equal(t, []uuid.UUID{author}, ids)
			return map[uuid.UUID]bool{author: true}, nil
		},
	})

	p, err := svc.Get(context.Background(), &viewer, author)

	require.NoError(t, err)
	assert.True(t, p.IsSubscribed)
}

func TestUserService_Get_NotFound(t *testing.T) {
	svc := newUserService(&mockUserRepo{
		getByID: func(context.Context, uuid.UUID) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}, nil)

	_, err := svc.Get(context.Background(), nil, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_List(t *testing.T) {
	viewer := uuid.New()
	a, b := domain.User{ID: uuid.New()}, domain.User{ID: uuid.New()}
	svc := newUserService(&mockUserRepo{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
			assert.Equal(t, 2, p.Page)
			return []domain.User{a, b}, 7, nil
		},
	}, &mockFollowRepo{
		subscribedTo: func(context.Context, uuid.UUID, []uuid.UUID) (map[uuid.UUID]bool, error) {
			return map[uuid.UUID]bool{b.ID: true}, nil
		},
	})

	got, total, err := svc.List(context.Background(), &viewer, domain.PaginationParams{Page: 2, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, got, 2)
	assert.False(t, got[0].IsSubscribed)
	assert.True(t, got[1].IsSubscribed)
}

// ---- SetPassword -----------------------------------------------------------

func hashOf(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_SetPassword_OK(t *testing.T) {
	id := uuid.New()
	var newHash string
	svc := newUserService(&mockUserRepo{
		getByID: func(context.Context, uuid.UUID) (domain.User, error) {
			return domain.User{ID: id, PasswordHash: hashOf(t, "old")}, nil
		},
		updatePassword: func(_ context.Context, got uuid.UUID, hash string) error {
			assert.Equal(t, id, got)
			newHash = hash
			return nil
		},
	}, nil)

	err := svc.SetPassword(context.Background(), id, "old", "new-password")

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password")))
}

func TestUserService_SetPassword_WrongCurrent(t *testing.T) {
	svc := newUserService(&mockUserRepo{
		getByID: func(context.Context, uuid.UUID) (domain.User, error) {
			return domain.User{PasswordHash: hashOf(t, "old")}, nil
		},
	}, nil)

	err := svc.SetPassword(context.Background(), uuid.New(), "guess", "new-password")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_SetPassword_EmptyNew(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, nil)

	err := svc.SetPassword(context.Background(), uuid.New(), "old", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}
