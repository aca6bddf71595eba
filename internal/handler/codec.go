package handler

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/service"
)

const (
	HeaderRate      = "X-Compression-Rate"
	HeaderAlgorithm = "X-Compression-Algorithm"
)

type CodecHandler struct {
	svc     *service.CodecService
	maxBody int64
}

func NewCodecHandler(s *service.CodecService, maxBody int64) *CodecHandler {
	return &CodecHandler{svc: s, maxBody: maxBody}
}

type selectReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *CodecHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List())
}

func (h *CodecHandler) Get(c *gin.Context) {
	info, err := h.svc.Info(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *CodecHandler) Select(c *gin.Context) {
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Select(req.Name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CodecHandler) Compress(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	if !utf8.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": huffpack.ErrInvalidText.Error()})
		return
	}
	res, err := h.svc.Compress(c.Query("algorithm"), string(body))
	if err != nil {
		c.JSON(compressStatus(err), gin.H{"error": err.Error()})
		return
	}
	if res.Empty() {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header(HeaderRate, strconv.FormatFloat(res.Rate, 'f', 2, 64))
	c.Header(HeaderAlgorithm, res.Algorithm)
	c.Data(http.StatusOK, "application/octet-stream", res.Data)
}

func (h *CodecHandler) Decompress(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	text, err := h.svc.Decompress(body)
	if err != nil {
		c.JSON(decompressStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *CodecHandler) Stats(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	if !utf8.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": huffpack.ErrInvalidText.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.Summarize(string(body)))
}

func (h *CodecHandler) readBody(c *gin.Context) ([]byte, bool) {
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return body, true
}

func compressStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, huffpack.ErrInvalidText):
		return http.StatusBadRequest
	case errors.Is(err, huffpack.ErrNoAlgorithmSelected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decompressStatus(err error) int {
	switch {
	case errors.Is(err, huffpack.ErrFormat), errors.Is(err, huffpack.ErrCorruptData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, huffpack.ErrNoAlgorithmSelected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
