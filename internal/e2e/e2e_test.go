package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/harborworks/chandlery/internal/attribute/domain"
	attributerepository "github.com/harborworks/chandlery/internal/attribute/repository"
	attributeservice "github.com/harborworks/chandlery/internal/attribute/service"
	"github.com/harborworks/chandlery/internal/cache"
	"github.com/harborworks/chandlery/internal/clock"
	"github.com/harborworks/chandlery/internal/config"
	"github.com/harborworks/chandlery/internal/observability"
	obsmetrics "github.com/harborworks/chandlery/internal/observability/metrics"
	orderrepository "github.com/harborworks/chandlery/internal/order/repository"
	orderservice "github.com/harborworks/chandlery/internal/order/service"
	quotarepository "github.com/harborworks/chandlery/internal/quota/repository"
	quotaservice "github.com/harborworks/chandlery/internal/quota/service"
	"github.com/harborworks/chandlery/internal/server"
	tariffrepository "github.com/harborworks/chandlery/internal/tariff/repository"
	tariffservice "github.com/harborworks/chandlery/internal/tariff/service"
	userrepository "github.com/harborworks/chandlery/internal/user/repository"
	userservice "github.com/harborworks/chandlery/internal/user/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	baseURL string
	httpSrv *httptest.Server
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func TestE2E_HealthCheck(t *testing.T) {
	resetDatabase(t, env.db)

	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

// Full marketplace pass: onboard users, approve the buyer's attributes,
// publish a tariff, subscribe, submit orders to the cap, collect a seller
// response, and free a slot by cancelling.
func TestE2E_MarketplaceFlow(t *testing.T) {
	resetDatabase(t, env.db)

	adminID := createUser(t, "admin@chandlery.test", "Admin", "admin")
	buyerID := createUser(t, "buyer@chandlery.test", "Buyer", "buyer")
	sellerID := createUser(t, "seller@chandlery.test", "Seller", "seller")

	// Buyer submits vessel attributes; the snapshot starts out PENDING.
	snapResp := struct {
		Data domain.SnapshotResponse `json:"data"`
	}{}
	resp, body := doJSON(t, http.MethodPost, "/v1/users/"+buyerID+"/attributes", map[string]any{
		"fields": map[string]any{"vessel_name": "MV Alcyone", "imo_number": "9321483"},
	}, buyerID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("append snapshot failed: %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &snapResp); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapResp.Data.Status != domain.StatusPending {
		t.Fatalf("expected PENDING snapshot, got %s", snapResp.Data.Status)
	}

	// Only admins may see the review queue.
	resp, body = doJSON(t, http.MethodGet, "/v1/users/"+buyerID+"/attributes/pending", nil, buyerID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin pending list, got %d: %s", resp.StatusCode, string(body))
	}
	resp, body = doJSON(t, http.MethodGet, "/v1/users/"+buyerID+"/attributes/pending", nil, adminID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pending list failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodPost, "/v1/users/"+buyerID+"/attributes/"+snapResp.Data.ID+"/approve", nil, adminID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve snapshot failed: %d: %s", resp.StatusCode, string(body))
	}
	approved := struct {
		Data domain.SnapshotResponse `json:"data"`
	}{}
	if err := json.Unmarshal(body, &approved); err != nil {
		t.Fatalf("decode approval: %v", err)
	}
	if approved.Data.Status != domain.StatusCurrent || approved.Data.ApprovedAt == nil {
		t.Fatalf("expected CURRENT stamped snapshot, got %+v", approved.Data)
	}

	// Tariff creation is admin-only.
	resp, body = doJSON(t, http.MethodPost, "/v1/tariffs", map[string]any{
		"name": "coastal", "max_orders_per_month": 2, "price_cents": 9900,
	}, buyerID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin tariff create, got %d: %s", resp.StatusCode, string(body))
	}
	tariffID := createTariff(t, adminID, "coastal", 2)

	// Ordering before subscribing trips the policy guard.
	resp, body = submitOrder(t, buyerID, "370803")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 before subscription, got %d: %s", resp.StatusCode, string(body))
	}
	assertPolicyCode(t, body, "ERR_NO_ACTIVE_TARIFF")

	resp, body = doJSON(t, http.MethodPost, "/v1/subscriptions", map[string]any{"tariff_id": tariffID}, buyerID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("subscribe failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodGet, "/v1/subscriptions/active", nil, buyerID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("active subscription failed: %d: %s", resp.StatusCode, string(body))
	}

	// Two orders fit the tariff; the third is rejected.
	orderID := ""
	for i := 0; i < 2; i++ {
		resp, body = submitOrder(t, buyerID, fmt.Sprintf("%06d", 370803+i))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("order %d failed: %d: %s", i, resp.StatusCode, string(body))
		}
		created := struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}{}
		if err := json.Unmarshal(body, &created); err != nil {
			t.Fatalf("decode order: %v", err)
		}
		orderID = created.Data.ID
	}
	resp, body = submitOrder(t, buyerID, "370805")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 over the limit, got %d: %s", resp.StatusCode, string(body))
	}
	assertPolicyCode(t, body, "ERR_ORDER_PER_MONTH_LIMIT_REACHED")

	// Seller responds; the buyer may not.
	resp, body = doJSON(t, http.MethodPost, "/v1/orders/"+orderID+"/responses", map[string]any{
		"message": "alongside delivery within 48h", "price_cents": 52000,
	}, sellerID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seller response failed: %d: %s", resp.StatusCode, string(body))
	}
	resp, body = doJSON(t, http.MethodPost, "/v1/orders/"+orderID+"/responses", map[string]any{
		"message": "responding to my own order",
	}, buyerID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer response, got %d: %s", resp.StatusCode, string(body))
	}

	// Cancelling releases the slot.
	resp, body = doJSON(t, http.MethodPost, "/v1/orders/"+orderID+"/status", map[string]any{"status": "CANCELLED"}, adminID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel order failed: %d: %s", resp.StatusCode, string(body))
	}
	resp, body = submitOrder(t, buyerID, "370806")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected freed slot to accept order, got %d: %s", resp.StatusCode, string(body))
	}

	// The buyer's listing shows everything they submitted.
	resp, body = doJSON(t, http.MethodGet, "/v1/orders", nil, buyerID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list orders failed: %d: %s", resp.StatusCode, string(body))
	}
	listed := struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}{}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("decode order list: %v", err)
	}
	if len(listed.Data) != 3 {
		t.Fatalf("expected 3 orders listed, got %d", len(listed.Data))
	}
}

func TestE2E_ActorHeaderRequired(t *testing.T) {
	resetDatabase(t, env.db)

	resp, body := doJSON(t, http.MethodPost, "/v1/orders", map[string]any{
		"items": []map[string]any{{"impa_code": "370803", "quantity": 1, "port_locode": "NLRTM"}},
	}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor header, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodGet, "/v1/users/1", nil, "not-a-number")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed actor header, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2E_SellerCannotSubmitOrders(t *testing.T) {
	resetDatabase(t, env.db)

	adminID := createUser(t, "admin@chandlery.test", "Admin", "admin")
	sellerID := createUser(t, "seller@chandlery.test", "Seller", "seller")
	tariffID := createTariff(t, adminID, "coastal", 2)

	resp, body := doJSON(t, http.MethodPost, "/v1/subscriptions", map[string]any{"tariff_id": tariffID}, sellerID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for seller subscribe, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = submitOrder(t, sellerID, "370803")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for seller order, got %d: %s", resp.StatusCode, string(body))
	}
}

func createUser(t *testing.T, email, name, role string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, "/v1/users", map[string]any{
		"email": email, "name": name, "role": role,
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create user %s failed: %d: %s", email, resp.StatusCode, string(body))
	}
	payload := struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return payload.Data.ID
}

func createTariff(t *testing.T, adminID, name string, maxOrders int) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, "/v1/tariffs", map[string]any{
		"name": name, "max_orders_per_month": maxOrders, "price_cents": 9900,
	}, adminID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create tariff failed: %d: %s", resp.StatusCode, string(body))
	}
	payload := struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode tariff: %v", err)
	}
	return payload.Data.ID
}

func submitOrder(t *testing.T, buyerID, impa string) (*http.Response, []byte) {
	t.Helper()
	return doJSON(t, http.MethodPost, "/v1/orders", map[string]any{
		"items": []map[string]any{
			{"impa_code": impa, "quantity": 1, "port_locode": "NLRTM"},
		},
	}, buyerID)
}

func assertPolicyCode(t *testing.T, body []byte, code string) {
	t.Helper()
	payload := struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Type != "policy_rejected" || payload.Error.Message != code {
		t.Fatalf("expected policy_rejected/%s, got %s/%s", code, payload.Error.Type, payload.Error.Message)
	}
}

func doJSON(t *testing.T, method, path string, reqBody any, actorID string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set(server.HeaderActor, actorID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, body
}

func startEnv() (*testEnv, error) {
	dsn := "file:chandlery_e2e?mode=memory&cache=shared&_loc=auto"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, err
	}
	if err := prepareSchema(db); err != nil {
		return nil, err
	}

	log := zap.NewNop()
	sysClock := clock.NewSystemClock()
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	userSvc := userservice.NewService(userservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: sysClock,
		Repo: userrepository.Provide(),
	})
	attributeSvc := attributeservice.NewService(attributeservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: sysClock,
		Repo:     attributerepository.Provide(),
		UserRepo: userrepository.Provide(),
	})
	tariffSvc := tariffservice.NewService(tariffservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: sysClock,
		Repo:  tariffrepository.Provide(),
		Cache: cache.NewTariffCache(),
	})
	orderRepo := orderrepository.Provide()
	quotaSvc := quotaservice.NewService(quotaservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: sysClock,
		Repo:    quotarepository.Provide(),
		Orders:  orderRepo,
		UserSvc: userSvc,
		Tariffs: tariffSvc,
	})
	orderSvc := orderservice.NewService(orderservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: sysClock,
		Repo:    orderRepo,
		UserSvc: userSvc,
		Quota:   quotaSvc,
	})

	engine := server.NewEngine(observability.Config{}, obsmetrics.NewHTTPMetrics())
	server.NewServer(server.ServerParams{
		Gin:   engine,
		Cfg:   config.Config{HTTPAddr: ":0"},
		DB:    db,
		Log:   log,
		GenID: node,

		UserSvc:      userSvc,
		AttributeSvc: attributeSvc,
		TariffSvc:    tariffSvc,
		QuotaSvc:     quotaSvc,
		OrderSvc:     orderSvc,
	})

	httpSrv := httptest.NewServer(engine)

	return &testEnv{
		db:      db,
		baseURL: httpSrv.URL,
		httpSrv: httpSrv,
	}, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
}

func resetDatabase(t *testing.T, db *gorm.DB) {
	t.Helper()
	tables := []string{
		"order_responses", "order_items", "orders",
		"quota_ledger_entries", "tariffs",
		"attribute_snapshots", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}

func prepareSchema(db *gorm.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			approved_snapshot_id INTEGER,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attribute_snapshots (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			fields TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			approved_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS tariffs (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			max_orders_per_month INTEGER NOT NULL,
			price_cents INTEGER NOT NULL,
			billing_period_months INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quota_ledger_entries (
			id INTEGER PRIMARY KEY,
			buyer_id INTEGER NOT NULL,
			tariff_id INTEGER NOT NULL,
			billing_anchor DATETIME NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			buyer_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY,
			order_id INTEGER NOT NULL,
			impa_code TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			port_locode TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_responses (
			id INTEGER PRIMARY KEY,
			order_id INTEGER NOT NULL,
			seller_id INTEGER NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			price_cents INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
