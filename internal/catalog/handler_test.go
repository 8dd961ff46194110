package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListActive(ctx context.Context) ([]Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Package), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id int) (*Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockService) GetActive(ctx context.Context, id int) (*Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, req CreatePackageRequest) (*Package, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockService) Deactivate(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(svc)
	router.GET("/packages", h.ListPackages)
	router.GET("/packages/:packageID", h.GetPackage)
	router.POST("/packages", h.CreatePackage)
	router.POST("/packages/:packageID/deactivate", h.DeactivatePackage)
	return router
}

func TestHandler_ListPackages(t *testing.T) {
	svc := new(MockService)
	svc.On("ListActive", mock.Anything).Return([]Package{{ID: 1, Name: "Monthly"}}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []Package
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestHandler_GetPackage(t *testing.T) {
	svc := new(MockService)
	svc.On("Get", mock.Anything, 4).Return(nil, ErrPackageNotFound)

	router := setupRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages/4", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PACKAGE_NOT_FOUND")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreatePackage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"Monthly","priceMinor":300000,"durationDays":30,"kind":"time-based"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("CreatePackageRequest")).
					Return(&Package{ID: 1, Name: "Monthly"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero duration",
			body:       `{"name":"Broken","durationDays":0,"kind":"time-based"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown kind",
			body:       `{"name":"Broken","durationDays":30,"kind":"lifetime"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/packages", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_DeactivatePackage(t *testing.T) {
	svc := new(MockService)
	svc.On("Deactivate", mock.Anything, 2).Return(nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/packages/2/deactivate", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
