package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"photoshare/internal/api/middleware"
	"photoshare/internal/model"
	"photoshare/internal/pkg/imagestore"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

// handleUploadPicture 上传一张图片。
//
// multipart 表单：file（必填）、name（必填）、description、tags（逗号分隔）。
// 渲染变换参数（width/height/crop/angle/gravity/effect）从表单读取，
// 缺省使用画廊默认的 350x350 fill。标签校验在任何写入之前完成。
func (s *Server) handleUploadPicture(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.PictureNameCantBeEmpty)})
		return
	}
	description := c.PostForm("description")

	tagNames := splitTags(c.PostForm("tags"))
	if len(tagNames) > repository.MaxTagsPerPicture {
		c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.TooManyTags)})
		return
	}
	for _, tag := range tagNames {
		if len(tag) > repository.MaxTagLength {
			c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.TagTooLong)})
			return
		}
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	defer file.Close()

	url, err := s.uploader.Upload(file, imagestore.FolderName(user.Email), transformFromForm(c))
	if err != nil {
		s.logger.Error("picture upload failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "picture upload failed"})
		return
	}

	picture := model.Picture{
		Name:        name,
		Description: description,
		PictureURL:  url,
		UserID:      user.ID,
	}
	saved, err := s.pictures.Save(c.Request.Context(), &picture, tagNames)
	if err != nil {
		s.logger.Error("save picture failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "save picture failed"})
		return
	}

	metrics.PicturesUploadedTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"picture": toPictureView(saved),
		"detail":  s.catalog.Get(messages.PictureUploaded),
	})
}

// handleSearchPictures 按条件搜索图片。无匹配返回 404。
func (s *Server) handleSearchPictures(c *gin.Context) {
	f := repository.PictureFilter{
		NameILike:        c.Query("name"),
		DescriptionILike: c.Query("description"),
		Rating:           parseFloatQuery(c, "rating"),
		RatingLT:         parseFloatQuery(c, "rating_lt"),
		RatingGTE:        parseFloatQuery(c, "rating_gte"),
		TagName:          c.Query("tag"),
		OrderBy:          c.Query("order_by"),
		Desc:             c.Query("desc") == "true",
	}

	pictures, err := s.pictures.Search(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "search pictures failed"})
		return
	}
	if len(pictures) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PicturesNotFound)})
		return
	}
	c.JSON(http.StatusOK, toPictureViews(pictures))
}

// handleGetPicture 按 ID 查看图片。
func (s *Server) handleGetPicture(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	picture, err := s.pictures.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load picture failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}
	c.JSON(http.StatusOK, toPictureView(picture))
}

type updatePictureRequest struct {
	Value string `json:"value"`
}

// handleUpdatePictureName 改名，仅图片所有者。
func (s *Server) handleUpdatePictureName(c *gin.Context) {
	s.updatePictureField(c, "name")
}

// handleUpdatePictureDescription 改描述，仅图片所有者。
func (s *Server) handleUpdatePictureDescription(c *gin.Context) {
	s.updatePictureField(c, "description")
}

func (s *Server) updatePictureField(c *gin.Context, field string) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updatePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	var (
		picture *model.Picture
		err     error
	)
	emptyKey := messages.PictureNameCantBeEmpty
	if field == "name" {
		picture, err = s.pictures.UpdateName(c.Request.Context(), id, user.ID, req.Value)
	} else {
		picture, err = s.pictures.UpdateDescription(c.Request.Context(), id, user.ID, req.Value)
		emptyKey = messages.PictureDescrCantBeEmpty
	}
	if errors.Is(err, repository.ErrEmptyValue) {
		c.JSON(http.StatusConflict, gin.H{"detail": s.catalog.Get(emptyKey)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "update picture failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}
	c.JSON(http.StatusOK, toPictureView(picture))
}

// handleDeletePicture 删除图片，所有者或 admin。
// 不存在与无权限两种情况都落在 404。
func (s *Server) handleDeletePicture(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	picture, err := s.pictures.Remove(c.Request.Context(), id, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "delete picture failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}
	s.logger.Info("picture deleted", slog.Int("picture_id", int(id)), slog.String("by", user.Username))
	c.JSON(http.StatusOK, toPictureView(picture))
}

// handlePictureQRCode 返回图片托管地址的 QR 码 data URI。
func (s *Server) handlePictureQRCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	picture, err := s.pictures.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load picture failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"qrcode": s.qr.Generate(picture.PictureURL)})
}

// handlePictureTags 返回图片的标签列表。
func (s *Server) handlePictureTags(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	picture, err := s.pictures.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load picture failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}
	c.JSON(http.StatusOK, toTagViews(picture.Tags))
}

// splitTags 解析逗号分隔的标签串：去空白、去空项、去重（保序）。
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// transformFromForm 从表单读取渲染变换参数，缺省用画廊默认值。
func transformFromForm(c *gin.Context) imagestore.Transform {
	tr := imagestore.DefaultTransform()
	if v, err := strconv.Atoi(c.PostForm("width")); err == nil && v > 0 {
		tr.Width = v
	}
	if v, err := strconv.Atoi(c.PostForm("height")); err == nil && v > 0 {
		tr.Height = v
	}
	if v := c.PostForm("crop"); v != "" {
		tr.Crop = v
	}
	if v, err := strconv.Atoi(c.PostForm("angle")); err == nil {
		tr.Angle = v
	}
	if v := c.PostForm("gravity"); v != "" {
		tr.Gravity = v
	}
	if v := c.PostForm("effect"); v != "" {
		tr.Effect = v
	}
	return tr
}
