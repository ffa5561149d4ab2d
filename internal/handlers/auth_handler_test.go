package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := newTestRouter()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/profile", injectUserID(1), handler.GetProfile)
	r.GET("/profile-anon", handler.GetProfile)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		userSvc := &mockUserService{
			registerFn: func(name, email, _ string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 1}, Name: name, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusCreated)

		user, ok := parseJSON(t, rec)["user"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected user object in response")
		}
		if user["email"] != "ada@example.com" || user["name"] != "Ada" {
			t.Errorf("unexpected user: %v", user)
		}
		if _, leaked := user["password"]; leaked {
			t.Error("password must not be serialized")
		}
	})

	t.Run("returns 400 when fields are missing", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"email":"ada@example.com"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			registerFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns a token that round-trips", func(t *testing.T) {
		tokens := newTestTokens()
		userSvc := &mockUserService{
			attemptLoginFn: func(email, _ string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 42}, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tokens))

		rec := doRequest(r, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusOK)

		token, _ := parseJSON(t, rec)["token"].(string)
		claims, err := tokens.Parse(token)
		if err != nil {
			t.Fatalf("token did not verify: %v", err)
		}
		if claims.UserID != 42 || claims.Email != "ada@example.com" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"wrong"}`)
		assertStatus(t, rec, http.StatusUnauthorized)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on malformed email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"x"}`)
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Name: "Ada", Email: "ada@example.com"}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens()))

		rec := doRequest(r, http.MethodGet, "/profile", "")
		assertStatus(t, rec, http.StatusOK)

		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["id"] != float64(1) {
			t.Errorf("expected id 1, got %v", user["id"])
		}
	})

	t.Run("returns 401 without a user in context", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokens()))

		rec := doRequest(r, http.MethodGet, "/profile-anon", "")
		assertStatus(t, rec, http.StatusUnauthorized)
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})
}
