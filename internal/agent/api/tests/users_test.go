package tests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-signup-service/internal/agent/api"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

func TestClient_Signup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req api.SignupRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, api.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"}, req)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"insertedId":"650c1f1e1c9d440000a1b2c3","acknowledged":true}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := api.NewClient(srv.URL + "/api/v1")
	res, err := c.Signup(context.Background(), api.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, models.InsertResult{InsertedID: "650c1f1e1c9d440000a1b2c3", Acknowledged: true}, res)
}

func TestClient_ListUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"1","name":"Ann","email":"ann@example.com","password":"argon2id$..."}]`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	users, err := api.NewClient(srv.URL+"/api/v1").ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "ann@example.com", users[0].Email)
}

// null в ответе превращается в пустой список
func TestClient_ListUsers_Null(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	}))
	defer srv.Close()

	users, err := api.NewClient(srv.URL).ListUsers(context.Background())
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)
}
