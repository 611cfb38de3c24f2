package routes

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authsvc "github.com/mateovidal/catalogbase-backend/internal/auth"
	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/internal/categories"
	"github.com/mateovidal/catalogbase-backend/internal/onboarding"
	"github.com/mateovidal/catalogbase-backend/internal/products"
	"github.com/mateovidal/catalogbase-backend/internal/storefront"
	"github.com/mateovidal/catalogbase-backend/internal/webhooks/payments"
	pkgauth "github.com/mateovidal/catalogbase-backend/pkg/auth"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/mailer"
	"github.com/mateovidal/catalogbase-backend/pkg/metrics"
)

const webhookSecret = "whsec-test"

type discardSender struct{}

func (discardSender) Send(_ context.Context, _ mailer.Message) error { return nil }

type testEnv struct {
	router http.Handler
	conn   *gorm.DB
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "catalogbase-test",
			ExpirationMinutes: 60,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Tokens: config.TokenConfig{
			VerificationTTL: time.Hour,
			ResetTTL:        time.Hour,
		},
		Payments: config.PaymentsConfig{WebhookSecret: webhookSecret},
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client := db.FromConn(conn)
	authMetrics := metrics.NewAuthMetrics(prometheus.NewRegistry())

	authService := authsvc.NewService(authsvc.ServiceParams{
		DB:     client,
		Sender: discardSender{},
		Config: cfg,
		Logger: logg,
	})
	catalogService := catalogs.NewService(catalogs.ServiceParams{DB: client, Logger: logg})
	onboardingService := onboarding.NewService(onboarding.ServiceParams{
		DB:       client,
		Resolver: catalogService,
		Logger:   logg,
	})
	categoryService := categories.NewService(categories.ServiceParams{DB: client, Logger: logg})
	productService := products.NewService(products.ServiceParams{DB: client, Logger: logg})
	storefrontService := storefront.NewService(storefront.ServiceParams{DB: client, Logger: logg})
	paymentsWebhook := payments.NewService(payments.ServiceParams{
		DB:      client,
		Secret:  webhookSecret,
		Logger:  logg,
		Metrics: authMetrics,
	})

	router := NewRouter(
		cfg, logg, client, nil, authMetrics,
		authService, catalogService, onboardingService,
		categoryService, productService, storefrontService,
		paymentsWebhook,
	)
	return &testEnv{router: router, conn: conn, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v (body %s)", err, resp.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health/live", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/categories", "/api/v1/products"} {
		resp := env.do(t, http.MethodGet, path, "", "")
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: expected 401 got %d", path, resp.Code)
		}
	}

	resp := env.do(t, http.MethodPost, "/api/v1/onboarding", "", `{}`)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("onboarding without token: expected 401 got %d", resp.Code)
	}
}

func TestSignupVerifyLoginOnboardFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/signup", "",
		`{"email":"zoe@example.com","name":"Zoe","password":"pw123456"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}

	// Password login before verification fails opaquely.
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"zoe@example.com","password":"pw123456"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unverified login: expected 401 got %d", resp.Code)
	}

	var codeRow models.EmailVerificationToken
	if err := env.conn.Where("email = ?", "zoe@example.com").First(&codeRow).Error; err != nil {
		t.Fatalf("loading verification code: %v", err)
	}

	// Code login verifies the email and yields a session.
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		fmt.Sprintf(`{"email":"zoe@example.com","code":%q}`, codeRow.Token))
	if resp.Code != http.StatusOK {
		t.Fatalf("code login: expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	token := resp.Header().Get("X-Auth-Token")
	if token == "" {
		t.Fatal("code login did not set X-Auth-Token")
	}

	claims, err := pkgauth.ParseSessionToken(env.cfg.JWT, token)
	if err != nil {
		t.Fatalf("parsing session token: %v", err)
	}
	if claims.OnboardingComplete {
		t.Error("onboarding flag set before onboarding")
	}

	resp = env.do(t, http.MethodPost, "/api/v1/onboarding", token,
		`{"business_name":"Zoe Ceramics","categories":["Vases","Bowls"],"product":{"name":"Tall Vase","price_cents":4500}}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("onboarding: expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	var onboarded onboarding.OnboardResponse
	decodeData(t, resp, &onboarded)
	if onboarded.Slug == "" {
		t.Fatal("onboarding returned empty slug")
	}

	// Fresh login carries the flipped flag.
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"zoe@example.com","password":"pw123456"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("post-onboarding login: expected 200 got %d", resp.Code)
	}
	claims, err = pkgauth.ParseSessionToken(env.cfg.JWT, resp.Header().Get("X-Auth-Token"))
	if err != nil {
		t.Fatalf("parsing session token: %v", err)
	}
	if !claims.OnboardingComplete {
		t.Error("onboarding flag not set after onboarding")
	}

	// The seed product is publicly visible on the storefront.
	resp = env.do(t, http.MethodGet, "/api/v1/storefront/"+onboarded.Slug+"/products", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("storefront list: expected 200 got %d", resp.Code)
	}
	var page storefront.ListingPage
	decodeData(t, resp, &page)
	if len(page.Items) != 1 || page.Items[0].Name != "Tall Vase" {
		t.Fatalf("unexpected storefront listing: %+v", page.Items)
	}

	// Authenticated catalog management works with the session token.
	resp = env.do(t, http.MethodGet, "/api/v1/categories", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("categories list: expected 200 got %d", resp.Code)
	}
	var cats []categories.CategoryDTO
	decodeData(t, resp, &cats)
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories got %d", len(cats))
	}
}

func TestStorefrontUnknownSlug(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/v1/storefront/nobody-here", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestWebhookSignatureGate(t *testing.T) {
	env := newTestEnv(t)

	catalog := models.Catalog{ID: uuid.New(), Name: "Acme", Slug: "acme-0001"}
	if err := env.conn.Create(&catalog).Error; err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}

	body := fmt.Sprintf(`{"type":"payment.succeeded","data":{"object":{"catalog_id":%q}}}`, catalog.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	req.Header.Set("X-Signature", "deadbeef")
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad signature: expected 400 got %d", resp.Code)
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	sig := hex.EncodeToString(mac.Sum(nil))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	req.Header.Set("X-Signature", sig)
	resp = httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("valid signature: expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}

	var updated models.Catalog
	if err := env.conn.First(&updated, "id = ?", catalog.ID).Error; err != nil {
		t.Fatalf("reloading catalog: %v", err)
	}
	if !updated.BillingActive {
		t.Error("billing flag not flipped by webhook")
	}
}
