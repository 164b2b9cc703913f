package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warehall/stockroom/internal/auth"
	"github.com/warehall/stockroom/internal/config"
	apperrors "github.com/warehall/stockroom/internal/errors"
	"github.com/warehall/stockroom/internal/service"
)

// mockProductService is a mock implementation of the ProductService interface.
type mockProductService struct {
	product  *service.ProductDto
	products []service.ProductDto
	error    error

	lastFindName  *string
	lastFindBrand *string
	lastParams    service.ProductParams
	lastID        int64
	removeCalled  bool
}

func (m *mockProductService) Find(_ context.Context, name, brand *string) ([]service.ProductDto, error) {
	m.lastFindName, m.lastFindBrand = name, brand
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) Create(_ context.Context, params service.ProductParams) (*service.ProductDto, error) {
	m.lastParams = params
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Update(_ context.Context, id int64, params service.ProductParams) (*service.ProductDto, error) {
	m.lastID, m.lastParams = id, params
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) RemoveByID(_ context.Context, id int64) error {
	m.lastID, m.removeCalled = id, true
	return m.error
}

func (m *mockProductService) Leftovers(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

// mockExporter is a mock implementation of the Exporter interface.
type mockExporter struct {
	content []byte
	error   error
}

func (m *mockExporter) Create(_ []service.ProductDto) ([]byte, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.content, nil
}

func strPtr(s string) *string { return &s }

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(svc service.ProductService, exporter Exporter) http.Handler {
	mux := chi.NewRouter()
	handler := NewHandler(svc, exporter, slog.New(slog.DiscardHandler))
	handler.RegisterRoutes(mux, passthrough, passthrough)
	return mux
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_FindProducts(t *testing.T) {
	mockSvc := &mockProductService{products: []service.ProductDto{
		{ID: 1, Name: "pencil", Brand: strPtr("BIC"), Price: 2, Quantity: 20},
	}}
	router := newTestRouter(mockSvc, &mockExporter{})

	rec := doRequest(t, router, http.MethodGet, "/products?name=pencil&brand=BIC")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotNil(t, mockSvc.lastFindName)
	assert.Equal(t, "pencil", *mockSvc.lastFindName)
	require.NotNil(t, mockSvc.lastFindBrand)
	assert.Equal(t, "BIC", *mockSvc.lastFindBrand)

	var list []service.ProductDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)
}

func Test_FindProducts_NoFilter(t *testing.T) {
	mockSvc := &mockProductService{products: []service.ProductDto{}}
	router := newTestRouter(mockSvc, &mockExporter{})

	rec := doRequest(t, router, http.MethodGet, "/products")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, mockSvc.lastFindName)
	assert.Nil(t, mockSvc.lastFindBrand)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func Test_ExportProducts(t *testing.T) {
	t.Run("Success - attachment with timestamped filename", func(t *testing.T) {
		content := []byte{0x50, 0x4b, 0x03, 0x04}
		router := newTestRouter(&mockProductService{}, &mockExporter{content: content})

		rec := doRequest(t, router, http.MethodGet, "/products/xls")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.ms-excel", rec.Header().Get("Content-Type"))
		assert.Regexp(t, `^attachment; filename="Products_.+\.xls"$`, rec.Header().Get("Content-Disposition"))
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, content, body)
	})

	t.Run("Error - export failure is a server error", func(t *testing.T) {
		exporter := &mockExporter{error: apperrors.ErrExportFailed}
		router := newTestRouter(&mockProductService{}, exporter)

		rec := doRequest(t, router, http.MethodGet, "/products/xls")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func Test_CreateProduct(t *testing.T) {
	t.Run("Success - echoes the created product", func(t *testing.T) {
		mockSvc := &mockProductService{product: &service.ProductDto{
			ID: 42, Name: "pencil", Brand: strPtr("BIC"), Price: 2, Quantity: 20,
		}}
		router := newTestRouter(mockSvc, &mockExporter{})

		rec := doRequest(t, router, http.MethodPost, "/product?name=pencil&brand=BIC&price=2.0&quantity=20")

		assert.Equal(t, http.StatusOK, rec.Code)
		var created service.ProductDto
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, int64(42), created.ID)
		assert.Equal(t, "pencil", created.Name)
		require.NotNil(t, mockSvc.lastParams.Price)
		assert.Equal(t, "2", mockSvc.lastParams.Price.String())
		require.NotNil(t, mockSvc.lastParams.Quantity)
		assert.Equal(t, int32(20), *mockSvc.lastParams.Quantity)
	})

	t.Run("Error - validation message is the plain-text body", func(t *testing.T) {
		mockSvc := &mockProductService{error: apperrors.ErrNameMissing}
		router := newTestRouter(mockSvc, &mockExporter{})

		rec := doRequest(t, router, http.MethodPost, "/product?price=2.0&quantity=20")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Name is missing", rec.Body.String())
	})

	t.Run("Error - malformed price", func(t *testing.T) {
		router := newTestRouter(&mockProductService{}, &mockExporter{})

		rec := doRequest(t, router, http.MethodPost, "/product?name=pencil&price=abc&quantity=20")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid price", rec.Body.String())
	})
}

func Test_UpdateProduct(t *testing.T) {
	t.Run("Success - partial update", func(t *testing.T) {
		mockSvc := &mockProductService{product: &service.ProductDto{
			ID: 7, Name: "pencil", Price: 3.5, Quantity: 20,
		}}
		router := newTestRouter(mockSvc, &mockExporter{})

		rec := doRequest(t, router, http.MethodPut, "/product?id=7&price=3.5")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), mockSvc.lastID)
		assert.Nil(t, mockSvc.lastParams.Name)
		assert.Nil(t, mockSvc.lastParams.Quantity)
		require.NotNil(t, mockSvc.lastParams.Price)
		assert.Equal(t, "3.5", mockSvc.lastParams.Price.String())
	})

	t.Run("Error - unknown id maps to 400, not 404", func(t *testing.T) {
		mockSvc := &mockProductService{error: apperrors.ErrProductNotFound}
		router := newTestRouter(mockSvc, &mockExporter{})

		rec := doRequest(t, router, http.MethodPut, "/product?id=404&price=3.5")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot find product with specified id", rec.Body.String())
	})

	t.Run("Error - missing id", func(t *testing.T) {
		router := newTestRouter(&mockProductService{}, &mockExporter{})

		rec := doRequest(t, router, http.MethodPut, "/product?price=3.5")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid id", rec.Body.String())
	})
}

func Test_DeleteProduct(t *testing.T) {
	mockSvc := &mockProductService{}
	router := newTestRouter(mockSvc, &mockExporter{})

	rec := doRequest(t, router, http.MethodDelete, "/product?id=9")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.True(t, mockSvc.removeCalled)
	assert.Equal(t, int64(9), mockSvc.lastID)
}

func Test_Leftovers(t *testing.T) {
	mockSvc := &mockProductService{products: []service.ProductDto{
		{ID: 3, Name: "glue", Price: 1.5, Quantity: 2},
	}}
	router := newTestRouter(mockSvc, &mockExporter{})

	rec := doRequest(t, router, http.MethodGet, "/leftovers")

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []service.ProductDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "glue", list[0].Name)
}

// Test_RoleContract exercises the routes behind the real access-control
// middleware: reads need the READ role, writes need CRUD.
func Test_RoleContract(t *testing.T) {
	registry, err := auth.NewRegistry(config.AuthConfig{
		Reader: config.AuthUser{Login: "user", Password: "secret"},
		Admin:  config.AuthUser{Login: "admin", Password: "hunter2"},
	})
	require.NoError(t, err)

	mux := chi.NewRouter()
	mockSvc := &mockProductService{
		product:  &service.ProductDto{ID: 42, Name: "pencil", Brand: strPtr("BIC"), Price: 2, Quantity: 20},
		products: []service.ProductDto{},
	}
	handler := NewHandler(mockSvc, &mockExporter{}, slog.New(slog.DiscardHandler))
	handler.RegisterRoutes(mux, registry.Require(auth.RoleRead), registry.Require(auth.RoleCRUD))

	testCases := []struct {
		name         string
		method       string
		target       string
		login        string
		password     string
		expectedCode int
	}{
		{name: "unauthenticated read", method: http.MethodGet, target: "/products", expectedCode: http.StatusUnauthorized},
		{name: "unauthenticated write", method: http.MethodPost, target: "/product?name=pencil&brand=BIC&price=2.0&quantity=20", expectedCode: http.StatusUnauthorized},
		{name: "wrong password", method: http.MethodGet, target: "/products", login: "user", password: "nope", expectedCode: http.StatusUnauthorized},
		{name: "reader can read", method: http.MethodGet, target: "/products", login: "user", password: "secret", expectedCode: http.StatusOK},
		{name: "reader can list leftovers", method: http.MethodGet, target: "/leftovers", login: "user", password: "secret", expectedCode: http.StatusOK},
		{name: "reader cannot write", method: http.MethodPost, target: "/product?name=pencil&brand=BIC&price=2.0&quantity=20", login: "user", password: "secret", expectedCode: http.StatusForbidden},
		{name: "admin can write", method: http.MethodPost, target: "/product?name=pencil&brand=BIC&price=2.0&quantity=20", login: "admin", password: "hunter2", expectedCode: http.StatusOK},
		{name: "admin can read", method: http.MethodGet, target: "/products", login: "admin", password: "hunter2", expectedCode: http.StatusOK},
		{name: "admin can delete", method: http.MethodDelete, target: "/product?id=42", login: "admin", password: "hunter2", expectedCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			if tc.login != "" {
				req.SetBasicAuth(tc.login, tc.password)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_FindProducts_StoreFailure(t *testing.T) {
	mockSvc := &mockProductService{error: errors.New("connection refused")}
	router := newTestRouter(mockSvc, &mockExporter{})

	rec := doRequest(t, router, http.MethodGet, "/products")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch products"}`, rec.Body.String())
}
