package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/noah-isme/hsms-announcement-api/internal/models"
	"github.com/noah-isme/hsms-announcement-api/internal/service"
	appErrors "github.com/noah-isme/hsms-announcement-api/pkg/errors"
	"github.com/noah-isme/hsms-announcement-api/pkg/response"
)

type announcementServiceMock struct {
	listActiveResp []models.Announcement
	listActiveErr  error
	listAllResp    []models.Announcement
	listAllErr     error
	createResp     *models.Announcement
	createErr      error
	updateResp     *models.Announcement
	updateErr      error
	deleteErr      error

	lastCaller    string
	lastID        string
	lastCreateReq service.CreateAnnouncementRequest
	lastUpdateReq service.UpdateAnnouncementRequest
}

func (m *announcementServiceMock) ListActive(ctx context.Context) ([]models.Announcement, error) {
	return m.listActiveResp, m.listActiveErr
}

func (m *announcementServiceMock) ListAll(ctx context.Context, caller string) ([]models.Announcement, error) {
	m.lastCaller = caller
	return m.listAllResp, m.listAllErr
}

func (m *announcementServiceMock) Create(ctx context.Context, req service.CreateAnnouncementRequest) (*models.Announcement, error) {
	m.lastCreateReq = req
	return m.createResp, m.createErr
}

func (m *announcementServiceMock) Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error) {
	m.lastID = id
	m.lastUpdateReq = req
	return m.updateResp, m.updateErr
}

func (m *announcementServiceMock) Delete(ctx context.Context, id, caller string) error {
	m.lastID = id
	m.lastCaller = caller
	return m.deleteErr
}

func testRouter(mock *announcementServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAnnouncementHandler(mock).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestAnnouncementHandlerListActive(t *testing.T) {
	id := primitive.NewObjectID()
	mock := &announcementServiceMock{
		listActiveResp: []models.Announcement{{ID: id, Message: "Exam Friday", ExpirationDate: "2024-06-01"}},
	}
	r := testRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/announcements/active", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// The identifier travels as its hex string.
	assert.Contains(t, w.Body.String(), id.Hex())
}

func TestAnnouncementHandlerListAllPassesUsername(t *testing.T) {
	mock := &announcementServiceMock{listAllResp: []models.Announcement{}}
	r := testRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/announcements?username=jdoe", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jdoe", mock.lastCaller)
}

func TestAnnouncementHandlerListAllUnauthenticated(t *testing.T) {
	mock := &announcementServiceMock{listAllErr: appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")}
	r := testRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/announcements", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNAUTHORIZED", envelope.Error.Code)
}

func TestAnnouncementHandlerCreate(t *testing.T) {
	id := primitive.NewObjectID()
	mock := &announcementServiceMock{
		createResp: &models.Announcement{ID: id, Message: "Exam Friday", ExpirationDate: "2024-06-01", CreatedBy: "jdoe"},
	}
	r := testRouter(mock)

	payload, _ := json.Marshal(service.CreateAnnouncementRequest{
		Message:        "Exam Friday",
		ExpirationDate: "2024-06-01",
		Username:       "jdoe",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/announcements", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Exam Friday", mock.lastCreateReq.Message)
	assert.Equal(t, "jdoe", mock.lastCreateReq.Username)
	assert.Contains(t, w.Body.String(), id.Hex())
}

func TestAnnouncementHandlerCreateInvalidBody(t *testing.T) {
	r := testRouter(&announcementServiceMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/announcements", bytes.NewBufferString(`{"message":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnnouncementHandlerUpdateNotFound(t *testing.T) {
	mock := &announcementServiceMock{updateErr: appErrors.Clone(appErrors.ErrNotFound, "announcement not found")}
	r := testRouter(mock)

	id := primitive.NewObjectID().Hex()
	payload, _ := json.Marshal(service.UpdateAnnouncementRequest{
		Message:        "new message",
		ExpirationDate: "2024-06-01",
		Username:       "jdoe",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/announcements/"+id, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, id, mock.lastID)
}

func TestAnnouncementHandlerDelete(t *testing.T) {
	mock := &announcementServiceMock{}
	r := testRouter(mock)

	id := primitive.NewObjectID().Hex()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/announcements/"+id+"?username=jdoe", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, mock.lastID)
	assert.Equal(t, "jdoe", mock.lastCaller)
	assert.Contains(t, w.Body.String(), "deleted")
}

func TestAnnouncementHandlerDeleteInvalidID(t *testing.T) {
	mock := &announcementServiceMock{deleteErr: appErrors.Clone(appErrors.ErrValidation, "invalid announcement id")}
	r := testRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/announcements/not-an-id?username=jdoe", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}
