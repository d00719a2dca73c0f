package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"photoshare/internal/api/middleware"
	"photoshare/internal/config"
	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

type mockCommentStore struct {
	createCalls  int
	lastText     string
	updateErr    error
	updateResult *model.Comment
	deleteResult *model.Comment
	listResult   []model.Comment
	lastSkip     int
	lastLimit    int
}

func (m *mockCommentStore) Create(ctx context.Context, pictureID, userID uint, text string) (*model.Comment, error) {
	m.createCalls++
	m.lastText = text
	return &model.Comment{ID: 1, PictureID: pictureID, UserID: userID, Text: text}, nil
}

func (m *mockCommentStore) Update(ctx context.Context, commentID, pictureID, userID uint, text string) (*model.Comment, error) {
	return m.updateResult, m.updateErr
}

func (m *mockCommentStore) Delete(ctx context.Context, commentID, pictureID uint) (*model.Comment, error) {
	return m.deleteResult, nil
}

func (m *mockCommentStore) ListByPicture(ctx context.Context, pictureID uint, skip, limit int) ([]model.Comment, error) {
	m.lastSkip = skip
	m.lastLimit = limit
	return m.listResult, nil
}

func newCommentsTestServer(comments *mockCommentStore, pictures *mockPictureStore) *Server {
	metrics.InitMetrics()
	return &Server{
		cfg:      &config.Config{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalog:  messages.New("en"),
		comments: comments,
		pictures: pictures,
	}
}

func TestCreateComment_EmptyTextAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{}
	pictures := &mockPictureStore{pictures: map[uint]*model.Picture{1: {ID: 1}}}
	s := newCommentsTestServer(comments, pictures)

	user := &model.User{ID: 2}
	r := gin.New()
	r.POST("/pictures/:id/comments", func(c *gin.Context) {
		c.Set(middleware.CtxUser, user)
		s.handleCreateComment(c)
	})

	payload, _ := json.Marshal(commentRequest{Text: ""})
	req := httptest.NewRequest(http.MethodPost, "/pictures/1/comments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if comments.createCalls != 1 || comments.lastText != "" {
		t.Fatalf("expected empty comment stored")
	}
}

func TestCreateComment_PictureMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{}
	pictures := &mockPictureStore{pictures: map[uint]*model.Picture{}}
	s := newCommentsTestServer(comments, pictures)

	user := &model.User{ID: 2}
	r := gin.New()
	r.POST("/pictures/:id/comments", func(c *gin.Context) {
		c.Set(middleware.CtxUser, user)
		s.handleCreateComment(c)
	})

	payload, _ := json.Marshal(commentRequest{Text: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/pictures/9/comments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if comments.createCalls != 0 {
		t.Fatalf("expected no comment created")
	}
}

func TestUpdateComment_EmptyTextConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{updateErr: repository.ErrEmptyValue}
	s := newCommentsTestServer(comments, &mockPictureStore{pictures: map[uint]*model.Picture{}})

	user := &model.User{ID: 2}
	r := gin.New()
	r.PATCH("/pictures/:id/comments/:comment_id", func(c *gin.Context) {
		c.Set(middleware.CtxUser, user)
		s.handleUpdateComment(c)
	})

	payload, _ := json.Marshal(commentRequest{Text: ""})
	req := httptest.NewRequest(http.MethodPatch, "/pictures/1/comments/5", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("can't be empty")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestUpdateComment_NotAuthorLooksLikeMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{updateResult: nil}
	s := newCommentsTestServer(comments, &mockPictureStore{pictures: map[uint]*model.Picture{}})

	user := &model.User{ID: 2}
	r := gin.New()
	r.PATCH("/pictures/:id/comments/:comment_id", func(c *gin.Context) {
		c.Set(middleware.CtxUser, user)
		s.handleUpdateComment(c)
	})

	payload, _ := json.Marshal(commentRequest{Text: "edited"})
	req := httptest.NewRequest(http.MethodPatch, "/pictures/1/comments/5", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Comment is not found")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestDeleteComment_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{deleteResult: nil}
	s := newCommentsTestServer(comments, &mockPictureStore{pictures: map[uint]*model.Picture{}})

	r := gin.New()
	r.DELETE("/pictures/:id/comments/:comment_id", s.handleDeleteComment)

	req := httptest.NewRequest(http.MethodDelete, "/pictures/1/comments/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListComments_PaginationDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{listResult: []model.Comment{{ID: 1, Text: "hi", PictureID: 1, UserID: 2}}}
	s := newCommentsTestServer(comments, &mockPictureStore{pictures: map[uint]*model.Picture{}})

	r := gin.New()
	r.GET("/pictures/:id/comments", s.handleListComments)

	req := httptest.NewRequest(http.MethodGet, "/pictures/1/comments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if comments.lastSkip != 0 || comments.lastLimit != 10 {
		t.Fatalf("expected defaults skip=0 limit=10, got %d/%d", comments.lastSkip, comments.lastLimit)
	}
}

func TestListComments_EmptyIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	comments := &mockCommentStore{}
	s := newCommentsTestServer(comments, &mockPictureStore{pictures: map[uint]*model.Picture{}})

	r := gin.New()
	r.GET("/pictures/:id/comments", s.handleListComments)

	req := httptest.NewRequest(http.MethodGet, "/pictures/1/comments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Comments not found")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
