package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storetrack/storetrack/internal/auth"
	"github.com/storetrack/storetrack/internal/checkout"
	"github.com/storetrack/storetrack/internal/models"
)

type capturedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

// capturePublisher stands in for the kafka producer in tests.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := event.(map[string]any)
	p.events = append(p.events, capturedEvent{Topic: topic, Key: key, Event: ev})
	return nil
}

func (p *capturePublisher) byType(typ string) []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []capturedEvent
	for _, ev := range p.events {
		if ev.Event["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Events   *capturePublisher
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
	Admin    *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	pub := &capturePublisher{}
	tokens := &auth.TokenService{JWTSecret: []byte("test-secret")}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Events:   pub,
		Auth:     &AuthHandler{DB: db, Tokens: tokens, Producer: pub},
		Products: &ProductHandler{DB: db, Producer: pub},
		Cart:     &CartHandler{DB: db, Producer: pub},
		Checkout: &CheckoutHandler{Checkout: checkout.NewService(db), Producer: pub},
		Orders:   &OrderHandler{DB: db},
		Admin:    &AdminHandler{DB: db, Producer: pub},
	}
}

// doJSONRequest builds an echo context for calling a handler directly.
func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser marks the context the way RequireLogin would after verifying a token.
func asUser(c echo.Context, id uint, role string) {
	c.Set("userID", id)
	c.Set("role", role)
}

func (env *testEnv) seedProduct(name, price string, inventory int) models.Product {
	env.T.Helper()
	p := models.Product{
		Name:      name,
		Category:  "test",
		Price:     decimal.RequireFromString(price),
		Inventory: inventory,
	}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func (env *testEnv) seedCartLine(userID, productID uint, qty int) {
	env.T.Helper()
	require.NoError(env.T, env.DB.Create(&models.CartItem{
		UserID: userID, ProductID: productID, Quantity: qty,
	}).Error)
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
	return he
}
