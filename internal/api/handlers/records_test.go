package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/pkg/dto"
)

type fakeRecordStore struct {
	records []models.FaceRecord
	listErr error
	getErr  error
}

func (f *fakeRecordStore) ListRecords(_ context.Context, userID string, limit, offset int) ([]models.FaceRecord, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []models.FaceRecord
	for _, rec := range f.records {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeRecordStore) GetRecordByFaceID(_ context.Context, faceID string) (*models.FaceRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, rec := range f.records {
		if rec.FaceID == faceID {
			return &rec, nil
		}
	}
	return nil, nil
}

type fakeBlobGetter struct {
	objects map[string][]byte
}

func (f *fakeBlobGetter) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func newRecordRouter(db RecordStore, blobs BlobGetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRecordHandler(db, blobs)
	r.GET("/v1/records", h.List)
	r.GET("/v1/records/:faceId", h.Get)
	r.GET("/v1/records/:faceId/image", h.Image)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordHandler_List(t *testing.T) {
	store := &fakeRecordStore{records: []models.FaceRecord{
		{FaceID: "face-1", UserID: "u1", BlobKey: "register/u1/1.jpg", EnrolledAt: 1},
		{FaceID: "face-2", UserID: "u2", BlobKey: "register/u2/2.jpg", EnrolledAt: 2},
	}}
	r := newRecordRouter(store, &fakeBlobGetter{})

	w := doGet(t, r, "/v1/records")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RecordListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "/v1/records/face-1/image", resp.Records[0].ImageURL)
}

func TestRecordHandler_List_FilterByUser(t *testing.T) {
	store := &fakeRecordStore{records: []models.FaceRecord{
		{FaceID: "face-1", UserID: "u1"},
		{FaceID: "face-2", UserID: "u2"},
	}}
	r := newRecordRouter(store, &fakeBlobGetter{})

	w := doGet(t, r, "/v1/records?user_id=u2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RecordListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "face-2", resp.Records[0].FaceID)
}

func TestRecordHandler_List_StoreError(t *testing.T) {
	store := &fakeRecordStore{listErr: errors.New("db gone")}
	r := newRecordRouter(store, &fakeBlobGetter{})

	w := doGet(t, r, "/v1/records")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// Backend error text stays out of the response
	assert.NotContains(t, w.Body.String(), "db gone")
}

func TestRecordHandler_Get(t *testing.T) {
	store := &fakeRecordStore{records: []models.FaceRecord{
		{FaceID: "face-1", UserID: "u1", BlobKey: "register/u1/1.jpg", EnrolledAt: 1},
	}}
	r := newRecordRouter(store, &fakeBlobGetter{})

	w := doGet(t, r, "/v1/records/face-1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RecordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "register/u1/1.jpg", resp.BlobKey)
}

func TestRecordHandler_Get_NotFound(t *testing.T) {
	r := newRecordRouter(&fakeRecordStore{}, &fakeBlobGetter{})
	w := doGet(t, r, "/v1/records/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordHandler_Image(t *testing.T) {
	store := &fakeRecordStore{records: []models.FaceRecord{
		{FaceID: "face-1", BlobKey: "register/u1/1.jpg"},
	}}
	blobs := &fakeBlobGetter{objects: map[string][]byte{
		"register/u1/1.jpg": []byte("jpeg-bytes"),
	}}
	r := newRecordRouter(store, blobs)

	w := doGet(t, r, "/v1/records/face-1/image")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", w.Body.String())
}

func TestRecordHandler_Image_BlobMissing(t *testing.T) {
	store := &fakeRecordStore{records: []models.FaceRecord{
		{FaceID: "face-1", BlobKey: "register/u1/1.jpg"},
	}}
	r := newRecordRouter(store, &fakeBlobGetter{})

	w := doGet(t, r, "/v1/records/face-1/image")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
