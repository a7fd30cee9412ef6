//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/api/handlers"
	"github.com/cloo-solutions/onetool/internal/api/middleware"
	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/repository"
	"github.com/cloo-solutions/onetool/internal/server"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/cloo-solutions/onetool/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	testQuotaBytes = 256
	testBucket     = "e2e-catalog"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	CatalogSvc   *service.CatalogService
	BinaryDir    string
	ConfigHome   string
	AccountID    string
	APIKeyID     string
	APIKeyToken  string
	HTTPClient   *http.Client
}

// SetupE2EEnv starts Postgres and RustFS, seeds the catalog and serves the API
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, s3C.S3Config(testBucket))
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	catalogSvc := service.NewCatalogService(
		repository.NewToolRepository(pool),
		repository.NewSearchLogRepository(pool),
		repository.NewTxRunner(pool),
		time.Second,
	)
	if _, err := catalogSvc.Seed(ctx, catalog.Builtin()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, catalogSvc, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		CatalogSvc:   catalogSvc,
		ConfigHome:   t.TempDir(),
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Bootstrap creates an account and API key through the public endpoints
func (e *E2ETestEnv) Bootstrap() {
	accountResp, err := e.Post("/accounts", map[string]string{"name": "E2E Test Account"}, "")
	if err != nil {
		e.T.Fatalf("failed to create account: %v", err)
	}

	var account struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(accountResp.Data, &account); err != nil {
		e.T.Fatalf("failed to parse account response: %v", err)
	}
	e.AccountID = account.ID

	keyResp, err := e.Post("/apikeys", map[string]string{
		"account_id": e.AccountID,
		"name":       "e2e-test-key",
	}, "")
	if err != nil {
		e.T.Fatalf("failed to create API key: %v", err)
	}

	var key struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(keyResp.Data, &key); err != nil {
		e.T.Fatalf("failed to parse key response: %v", err)
	}
	e.APIKeyID = key.ID
	e.APIKeyToken = key.Token
}

// BuildBinaries builds the onetool and onetoold binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "onetool-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, name := range []string{"onetool", "onetoold"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

// RunOneTool runs the client CLI against the test server
func (e *E2ETestEnv) RunOneTool(stdin string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "onetool"), args...)
	cmd.Dir = e.ConfigHome
	if stdin != "" {
		cmd.Stdin = bytes.NewReader([]byte(stdin))
	}
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+e.ConfigHome,
		"HOME="+e.ConfigHome,
		"ONETOOL_API_KEY="+e.APIKeyToken,
		"ONETOOL_API_URL="+e.ServerURL,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// RunOneToold runs the admin CLI against the test database and object store
func (e *E2ETestEnv) RunOneToold(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "onetoold"), args...)
	cmd.Dir = e.ConfigHome
	cmd.Env = append(os.Environ(),
		"ONETOOL_DATABASE_URL="+e.PostgresC.ConnectionString(),
		"ONETOOL_S3_ENDPOINT="+e.RustFSC.Endpoint(),
		"ONETOOL_S3_ACCESS_KEY_ID="+testutil.RustFSAccessKey,
		"ONETOOL_S3_SECRET_ACCESS_KEY="+testutil.RustFSSecretKey,
		"ONETOOL_S3_BUCKET="+testBucket,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	Status int
	Body   APIResponse
	Raw    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Raw)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, authToken)
}

func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, authToken)
}

func (e *E2ETestEnv) Put(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodPut, path, body, authToken)
}

func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &apiResp); err != nil && resp.StatusCode < 400 {
			return nil, err
		}
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: apiResp, Raw: string(respBody)}
	}

	return &apiResp, nil
}

// Download fetches url without the API client's headers
func (e *E2ETestEnv) Download(url string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func startServer(t *testing.T, pool *pgxpool.Pool, catalogSvc *service.CatalogService, port int) (string, func()) {
	authSvc := service.NewAuthService(
		repository.NewAccountRepository(pool),
		repository.NewAPIKeyRepository(pool),
		&service.DefaultUUIDGenerator{},
	)
	prefSvc := service.NewPreferenceService(repository.NewPreferenceRepository(pool), catalogSvc, testQuotaBytes)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:     authSvc,
		ToolHandler:       handlers.NewToolHandler(catalogSvc),
		PreferenceHandler: handlers.NewPreferenceHandler(prefSvc),
		CalcHandler:       handlers.NewCalcHandler(service.NewCalculatorService()),
		AuthHandler:       handlers.NewAuthHandler(authSvc),
		HealthHandler:     handlers.NewHealthHandler(pool),
		RateLimiter:       middleware.NewRateLimiter(1000, 1000),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
