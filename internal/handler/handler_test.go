package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ---- mock implementations ----

type mockCommander struct {
	createFn     func(cqrs.CreateAccountCommand) (*models.Account, error)
	profileFn    func(cqrs.UpdateProfileImageCommand) (*models.Account, error)
	selfUpdateFn func(cqrs.SelfUpdateCommand) (*models.Account, error)
	adminEditFn  func(cqrs.AdminEditCommand) ([]models.AccountView, error)
	deleteFn     func(cqrs.DeleteAccountCommand) ([]models.AccountView, error)
}

func (m *mockCommander) CreateAccount(_ context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCommander) UpdateProfileImage(_ context.Context, cmd cqrs.UpdateProfileImageCommand) (*models.Account, error) {
	if m.profileFn != nil {
		return m.profileFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCommander) SelfUpdate(_ context.Context, cmd cqrs.SelfUpdateCommand) (*models.Account, error) {
	if m.selfUpdateFn != nil {
		return m.selfUpdateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCommander) AdminEdit(_ context.Context, cmd cqrs.AdminEditCommand) ([]models.AccountView, error) {
	if m.adminEditFn != nil {
		return m.adminEditFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCommander) DeleteAccount(_ context.Context, cmd cqrs.DeleteAccountCommand) ([]models.AccountView, error) {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockQuerier struct {
	getFn        func(cqrs.GetAccountQuery) (*models.Account, error)
	getByEmailFn func(cqrs.GetAccountByEmailQuery) (*models.Account, error)
	listFn       func(cqrs.ListAccountsQuery) ([]models.AccountView, error)
	searchFn     func(cqrs.SearchAccountsQuery) ([]models.AccountView, error)
}

func (m *mockQuerier) GetAccount(_ context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) GetAccountByEmail(_ context.Context, q cqrs.GetAccountByEmailQuery) (*models.Account, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) View(a *models.Account) models.AccountView {
	return models.ToView(a, func(key string) string { return "https://cdn.example.com/" + key })
}
func (m *mockQuerier) ListAccounts(_ context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) SearchAccounts(_ context.Context, q cqrs.SearchAccountsQuery) ([]models.AccountView, error) {
	if m.searchFn != nil {
		return m.searchFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

type mockAuth struct {
	loginFn   func(cqrs.LoginCommand) (*models.TokenPair, error)
	refreshFn func(cqrs.RefreshTokenCommand) (*models.TokenPair, error)
}

func (m *mockAuth) Login(_ context.Context, cmd cqrs.LoginCommand) (*models.TokenPair, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAuth) Refresh(_ context.Context, cmd cqrs.RefreshTokenCommand) (*models.TokenPair, error) {
	if m.refreshFn != nil {
		return m.refreshFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockGenerator struct {
	generateFn func(string) (string, error)
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(prompt)
	}
	return "", fmt.Errorf("not configured")
}

// mockParser accepts "user-token" (account 1), "admin-token" (account 2) and
// "nosub-token", which carries no subject.
type mockParser struct{}

func (mockParser) Parse(token, wantType string) (*tokens.Claims, error) {
	switch token {
	case "user-token":
		return &tokens.Claims{Username: "alice", Email: "alice@example.com", TokenType: wantType,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}, nil
	case "admin-token":
		return &tokens.Claims{Username: "root", Email: "root@example.com", IsSuperuser: true, TokenType: wantType,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "2"}}, nil
	case "nosub-token":
		return &tokens.Claims{Username: "alice", Email: "alice@example.com", TokenType: wantType}, nil
	}
	return nil, errs.ErrInvalidToken
}

// ---- helpers ----

type deps struct {
	cmds   *mockCommander
	qrys   *mockQuerier
	auth   *mockAuth
	images *mockGenerator
}

func newTestRouter(d deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if d.cmds == nil {
		d.cmds = &mockCommander{}
	}
	if d.qrys == nil {
		d.qrys = &mockQuerier{}
	}
	if d.auth == nil {
		d.auth = &mockAuth{}
	}
	if d.images == nil {
		d.images = &mockGenerator{}
	}
	return NewRouter(Handlers{
		Users:  NewUserHandler(d.cmds, d.qrys),
		Admin:  NewAdminHandler(d.cmds, d.qrys),
		Auth:   NewAuthHandler(d.auth),
		Images: NewImageHandler(d.images),
	}, mockParser{}, zap.NewNop())
}

func doRequest(router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, name string, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Errorf("[%s] expected %d got %d; body: %s", name, want, w.Code, w.Body.String())
	}
}

// ---- test data ----

var testAccount = &models.Account{
	ID: 1, Username: "alice", Email: "alice@example.com", PhoneNumber: "1111111111",
	PasswordHash: "$2a$10$secret", IsActive: true, IsListed: true, ProfileImage: "images/a.png",
}

var testListing = []models.AccountView{
	{ID: 1, Username: "alice", Email: "alice@example.com", PhoneNumber: "1111111111", IsActive: true, IsListed: true},
	{ID: 3, Username: "bob", Email: "bob@example.com", PhoneNumber: "2222222222", IsActive: true, IsListed: false},
}

// ---- tests ----

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(deps{}), http.MethodGet, "/health", "", nil)
	expectStatus(t, "health", w, http.StatusOK)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success - public fields only",
			body: map[string]interface{}{"username": "alice", "email": "Alice@Example.com", "phone_number": "1111111111", "password": "Str0ng!Passw0rd"},
			createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
				if cmd.Email != "Alice@Example.com" || cmd.PhoneNumber != "1111111111" {
					return nil, fmt.Errorf("unexpected command %+v", cmd)
				}
				return testAccount, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "bad request - duplicate email",
			body: map[string]interface{}{"username": "alice", "email": "a@x.com", "phone_number": "1111111111", "password": "Str0ng!Passw0rd"},
			createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
				return nil, errs.FieldError("email", "user account with this email already exists.")
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed json",
			body:           "not-an-object",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(deps{cmds: &mockCommander{createFn: tt.createFn}})
			w := doRequest(router, http.MethodPost, "/register/", "", tt.body)
			expectStatus(t, tt.name, w, tt.expectedStatus)
		})
	}
}

func TestRegister_ResponseShape(t *testing.T) {
	router := newTestRouter(deps{cmds: &mockCommander{
		createFn: func(cqrs.CreateAccountCommand) (*models.Account, error) { return testAccount, nil },
	}})
	w := doRequest(router, http.MethodPost, "/register/", "", map[string]interface{}{"username": "alice"})

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body) != 3 || body["email"] != "alice@example.com" || body["phone_number"] != "1111111111" {
		t.Errorf("unexpected public shape: %v", body)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("password hash leaked: %s", w.Body.String())
	}
}

func TestRegister_FieldErrorEnvelope(t *testing.T) {
	router := newTestRouter(deps{cmds: &mockCommander{
		createFn: func(cqrs.CreateAccountCommand) (*models.Account, error) {
			v := errs.NewValidationError()
			v.Add("phone_number", "This field is required.")
			v.Add("email", "Enter a valid email address.")
			return nil, v
		},
	}})
	w := doRequest(router, http.MethodPost, "/register/", "", map[string]interface{}{})

	var body struct {
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Details) != 2 || body.Details[0].Field != "email" || body.Details[1].Field != "phone_number" {
		t.Errorf("unexpected details: %s", w.Body.String())
	}
}

func TestToken(t *testing.T) {
	pair := &models.TokenPair{Access: "a", Refresh: "r"}
	tests := []struct {
		name           string
		path           string
		body           interface{}
		auth           *mockAuth
		expectedStatus int
	}{
		{
			name: "success - login",
			path: "/token/",
			body: map[string]interface{}{"email": "alice@example.com", "password": "pw"},
			auth: &mockAuth{loginFn: func(cqrs.LoginCommand) (*models.TokenPair, error) { return pair, nil }},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized - wrong password",
			path: "/token/",
			body: map[string]interface{}{"email": "alice@example.com", "password": "bad"},
			auth: &mockAuth{loginFn: func(cqrs.LoginCommand) (*models.TokenPair, error) { return nil, errs.ErrInvalidCredentials }},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing password",
			path:           "/token/",
			body:           map[string]interface{}{"email": "alice@example.com"},
			auth:           &mockAuth{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "success - refresh",
			path: "/token/refresh/",
			body: map[string]interface{}{"refresh": "r"},
			auth: &mockAuth{refreshFn: func(cqrs.RefreshTokenCommand) (*models.TokenPair, error) { return pair, nil }},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized - expired refresh",
			path: "/token/refresh/",
			body: map[string]interface{}{"refresh": "old"},
			auth: &mockAuth{refreshFn: func(cqrs.RefreshTokenCommand) (*models.TokenPair, error) { return nil, errs.ErrInvalidToken }},
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(deps{auth: tt.auth})
			w := doRequest(router, http.MethodPost, tt.path, "", tt.body)
			expectStatus(t, tt.name, w, tt.expectedStatus)
		})
	}
}

// getOwnFn serves testAccount for its id only.
func getOwnFn(q cqrs.GetAccountQuery) (*models.Account, error) {
	if q.AccountID != testAccount.ID {
		return nil, errs.ErrNotFound
	}
	return testAccount, nil
}

func TestMe(t *testing.T) {
	qrys := &mockQuerier{
		getFn: getOwnFn,
		getByEmailFn: func(cqrs.GetAccountByEmailQuery) (*models.Account, error) {
			return nil, fmt.Errorf("caller must be looked up by id")
		},
	}
	router := newTestRouter(deps{qrys: qrys})

	expectStatus(t, "no token", doRequest(router, http.MethodGet, "/me/", "", nil), http.StatusUnauthorized)
	expectStatus(t, "bad token", doRequest(router, http.MethodGet, "/me/", "forged", nil), http.StatusUnauthorized)
	expectStatus(t, "own record", doRequest(router, http.MethodGet, "/me/", "user-token", nil), http.StatusOK)
	expectStatus(t, "account gone", doRequest(router, http.MethodGet, "/me/", "admin-token", nil), http.StatusUnauthorized)
	expectStatus(t, "no subject", doRequest(router, http.MethodGet, "/me/", "nosub-token", nil), http.StatusUnauthorized)
}

func TestGenerateImage(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		generateFn     func(string) (string, error)
		expectedStatus int
	}{
		{
			name:           "success",
			body:           map[string]interface{}{"prompt": "a cat in a hat"},
			generateFn:     func(string) (string, error) { return "https://images.example.com/cat.png", nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - missing prompt",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - prompt too long",
			body:           map[string]interface{}{"prompt": strings.Repeat("x", 301)},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "success - prompt at limit in multibyte characters",
			body:           map[string]interface{}{"prompt": strings.Repeat("é", 300)},
			generateFn:     func(string) (string, error) { return "https://images.example.com/e.png", nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad gateway - provider failure",
			body:           map[string]interface{}{"prompt": "a cat"},
			generateFn:     func(string) (string, error) { return "", errs.Upstream("openai", errors.New("rate limited")) },
			expectedStatus: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(deps{images: &mockGenerator{generateFn: tt.generateFn}})
			w := doRequest(router, http.MethodPost, "/generate_image/", "", tt.body)
			expectStatus(t, tt.name, w, tt.expectedStatus)
		})
	}
}

func TestGenerateImage_HidesProviderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	router := NewRouter(Handlers{
		Users:  NewUserHandler(&mockCommander{}, &mockQuerier{}),
		Admin:  NewAdminHandler(&mockCommander{}, &mockQuerier{}),
		Auth:   NewAuthHandler(&mockAuth{}),
		Images: NewImageHandler(&mockGenerator{generateFn: func(string) (string, error) {
			return "", errs.Upstream("openai", errors.New("invalid api key sk-live-123"))
		}}),
	}, mockParser{}, zap.New(core))

	w := doRequest(router, http.MethodPost, "/generate_image/", "", map[string]interface{}{"prompt": "a cat"})
	expectStatus(t, "provider failure", w, http.StatusBadGateway)
	if strings.Contains(w.Body.String(), "sk-live-123") || !strings.Contains(w.Body.String(), "Image provider unavailable") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 || !strings.Contains(entries[0].ContextMap()["errors"].(string), "sk-live-123") {
		t.Errorf("cause not logged: %+v", entries)
	}
}

func TestFetchData(t *testing.T) {
	getFn := func(q cqrs.GetAccountByEmailQuery) (*models.Account, error) {
		if q.Email == "alice@example.com" {
			return testAccount, nil
		}
		return nil, errs.ErrNotFound
	}
	tests := []struct {
		name           string
		token          string
		body           interface{}
		expectedStatus int
	}{
		{name: "own record", token: "user-token", body: map[string]interface{}{"email": "Alice@Example.com"}, expectedStatus: http.StatusOK},
		{name: "blank email means caller", token: "user-token", body: map[string]interface{}{}, expectedStatus: http.StatusOK},
		{name: "other record as user", token: "user-token", body: map[string]interface{}{"email": "bob@example.com"}, expectedStatus: http.StatusForbidden},
		{name: "other record as admin", token: "admin-token", body: map[string]interface{}{"email": "alice@example.com"}, expectedStatus: http.StatusOK},
		{name: "unknown as admin", token: "admin-token", body: map[string]interface{}{"email": "ghost@example.com"}, expectedStatus: http.StatusBadRequest},
		{name: "no token", token: "", body: map[string]interface{}{"email": "alice@example.com"}, expectedStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(deps{qrys: &mockQuerier{getFn: getOwnFn, getByEmailFn: getFn}})
			w := doRequest(router, http.MethodPost, "/fetchdata/", tt.token, tt.body)
			expectStatus(t, tt.name, w, tt.expectedStatus)
		})
	}
}

func TestEditDetails(t *testing.T) {
	var got cqrs.SelfUpdateCommand
	cmds := &mockCommander{selfUpdateFn: func(cmd cqrs.SelfUpdateCommand) (*models.Account, error) {
		got = cmd
		if cmd.Patch.PhoneNumber != nil && *cmd.Patch.PhoneNumber == "123" {
			return nil, errs.FieldError("phone_number", "Phone number must be exactly 10 characters.")
		}
		return testAccount, nil
	}}
	router := newTestRouter(deps{cmds: cmds})

	w := doRequest(router, http.MethodPost, "/edit_details/", "user-token", map[string]interface{}{"username": "alice2", "password": ""})
	expectStatus(t, "success", w, http.StatusOK)
	if got.AccountID != 1 || got.Patch.Username == nil || *got.Patch.Username != "alice2" || got.Patch.Email != nil {
		t.Errorf("unexpected command: %+v", got)
	}

	w = doRequest(router, http.MethodPost, "/edit_details/", "user-token", map[string]interface{}{"phone_number": "123"})
	expectStatus(t, "invalid phone", w, http.StatusBadRequest)

	w = doRequest(router, http.MethodPost, "/edit_details/", "", map[string]interface{}{"username": "x"})
	expectStatus(t, "no token", w, http.StatusUnauthorized)

	w = doRequest(router, http.MethodPost, "/edit_details/", "nosub-token", map[string]interface{}{"username": "x"})
	expectStatus(t, "no subject", w, http.StatusUnauthorized)
}

func multipartProfile(t *testing.T, email string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if email != "" {
		if err := mw.WriteField("email", email); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("profile", "me.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpdateProfile(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	profileFn := func(cmd cqrs.UpdateProfileImageCommand) (*models.Account, error) {
		if cmd.AccountID != testAccount.ID && cmd.Email != "alice@example.com" {
			return nil, errs.ErrNotFound
		}
		if cmd.Image == nil {
			return nil, errs.FieldError("profile", "No file was submitted.")
		}
		return testAccount, nil
	}
	tests := []struct {
		name           string
		token          string
		email          string
		file           []byte
		expectedStatus int
	}{
		{name: "success - own email", token: "user-token", email: "alice@example.com", file: png, expectedStatus: http.StatusOK},
		{name: "success - email defaults to caller", token: "user-token", file: png, expectedStatus: http.StatusOK},
		{name: "bad request - missing file", token: "user-token", email: "alice@example.com", expectedStatus: http.StatusBadRequest},
		{name: "forbidden - other email", token: "user-token", email: "bob@example.com", file: png, expectedStatus: http.StatusForbidden},
		{name: "success - admin targets other email", token: "admin-token", email: "Alice@Example.com", file: png, expectedStatus: http.StatusOK},
		{name: "not found - admin targets unknown email", token: "admin-token", email: "ghost@example.com", file: png, expectedStatus: http.StatusNotFound},
		{name: "unauthorized - no token", email: "alice@example.com", file: png, expectedStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(deps{cmds: &mockCommander{profileFn: profileFn}})
			body, contentType := multipartProfile(t, tt.email, tt.file)
			req, _ := http.NewRequest(http.MethodPatch, "/update_profile/", body)
			req.Header.Set("Content-Type", contentType)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			expectStatus(t, tt.name, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK && !strings.Contains(w.Body.String(), "https://cdn.example.com/images/a.png") {
				t.Errorf("[%s] missing profile url: %s", tt.name, w.Body.String())
			}
		})
	}
}

func TestAdminRoutes_RequireAdministrator(t *testing.T) {
	listFn := func(cqrs.ListAccountsQuery) ([]models.AccountView, error) { return testListing, nil }
	router := newTestRouter(deps{qrys: &mockQuerier{listFn: listFn}})

	routes := []struct{ method, path string }{
		{http.MethodPost, "/users_data/"},
		{http.MethodPut, "/edit_user/1/"},
		{http.MethodDelete, "/delete_user/1/"},
		{http.MethodPost, "/search/"},
	}
	for _, r := range routes {
		expectStatus(t, r.path+" as user", doRequest(router, r.method, r.path, "user-token", map[string]interface{}{}), http.StatusForbidden)
		expectStatus(t, r.path+" anonymous", doRequest(router, r.method, r.path, "", nil), http.StatusUnauthorized)
	}
	expectStatus(t, "listing as admin", doRequest(router, http.MethodPost, "/users_data/", "admin-token", nil), http.StatusOK)
}

func TestEditUser(t *testing.T) {
	var got cqrs.AdminEditCommand
	cmds := &mockCommander{adminEditFn: func(cmd cqrs.AdminEditCommand) ([]models.AccountView, error) {
		got = cmd
		if cmd.AccountID == 404 {
			return nil, errs.ErrNotFound
		}
		return testListing, nil
	}}
	router := newTestRouter(deps{cmds: cmds})

	w := doRequest(router, http.MethodPut, "/edit_user/3/", "admin-token", map[string]interface{}{"is_listed": false})
	expectStatus(t, "success", w, http.StatusOK)
	if got.AccountID != 3 || got.RequestingRole != models.RoleAdministrator || got.Patch.IsListed == nil || *got.Patch.IsListed {
		t.Errorf("unexpected command: %+v", got)
	}
	var views []models.AccountView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil || len(views) != 2 {
		t.Errorf("unexpected listing: %s", w.Body.String())
	}

	expectStatus(t, "unknown id", doRequest(router, http.MethodPut, "/edit_user/404/", "admin-token", map[string]interface{}{}), http.StatusBadRequest)
	expectStatus(t, "bad id", doRequest(router, http.MethodPut, "/edit_user/abc/", "admin-token", map[string]interface{}{}), http.StatusBadRequest)
}

func TestDeleteUser(t *testing.T) {
	cmds := &mockCommander{deleteFn: func(cmd cqrs.DeleteAccountCommand) ([]models.AccountView, error) {
		if cmd.AccountID != 3 {
			return nil, errs.ErrNotFound
		}
		return testListing[:1], nil
	}}
	router := newTestRouter(deps{cmds: cmds})

	expectStatus(t, "success", doRequest(router, http.MethodDelete, "/delete_user/3/", "admin-token", nil), http.StatusOK)
	expectStatus(t, "unknown id", doRequest(router, http.MethodDelete, "/delete_user/9/", "admin-token", nil), http.StatusBadRequest)
}

func TestSearch(t *testing.T) {
	var got string
	qrys := &mockQuerier{searchFn: func(q cqrs.SearchAccountsQuery) ([]models.AccountView, error) {
		got = q.Query
		return testListing, nil
	}}
	router := newTestRouter(deps{qrys: qrys})

	expectStatus(t, "with query", doRequest(router, http.MethodPost, "/search/", "admin-token", map[string]interface{}{"query": "bob"}), http.StatusOK)
	if got != "bob" {
		t.Errorf("expected query bob, got %q", got)
	}
	expectStatus(t, "empty body", doRequest(router, http.MethodPost, "/search/", "admin-token", nil), http.StatusOK)
	if got != "" {
		t.Errorf("expected empty query, got %q", got)
	}
}
