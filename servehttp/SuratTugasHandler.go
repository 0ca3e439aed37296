package servehttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"suratgen/bizerror"
	"suratgen/client/records"
	"suratgen/misc"
	"suratgen/session"
	"suratgen/surattugas"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type PipelineTraits interface {
	Generate(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error)
	Regenerate(s *session.Session, recordID string) (*surattugas.Outcome, error)
}

type RecordsQueryTraits interface {
	GetCurrentNumber(s *session.Session, month time.Month, year int) (int, error)
	GetSuratTugasByID(s *session.Session, id string) (*records.SuratTugasDetail, error)
	ListSuratTugas(s *session.Session) ([]records.SuratTugasDetail, error)
}

type ArtifactServeTraits interface {
	GenerateAndStore(ctx context.Context, url, documentID string) (string, error)
	Retrieve(documentID string) ([]byte, error)
}

func RegisterSuratTugasHandler(r *gin.Engine, pipeline PipelineTraits, recordsClient RecordsQueryTraits,
	artifacts ArtifactServeTraits, cfg *surattugas.Config, middleWares ...gin.HandlerFunc) {

	g := r.Group("/v1/surat-tugas", middleWares...)

	handler := &suratTugasHandler{pipeline: pipeline, records: recordsClient, artifacts: artifacts, config: cfg}

	g.GET("", handler.handleList)
	g.GET("/current-number", handler.handleCurrentNumber)
	g.POST("/generate", handler.handleGenerate)
	g.POST("/:id/regenerate", handler.handleRegenerate)
	g.POST("/qr", handler.handleGenerateQr)
	g.GET("/qr-image/:documentId", handler.handleQrImage)
}

type suratTugasHandler struct {
	pipeline  PipelineTraits
	records   RecordsQueryTraits
	artifacts ArtifactServeTraits
	config    *surattugas.Config
}

func (h *suratTugasHandler) handleList(c *gin.Context) {
	list, err := h.records.ListSuratTugas(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: list, Total: uint64(len(list))})
}

func (h *suratTugasHandler) handleCurrentNumber(c *gin.Context) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		panic(&bizerror.ErrBadParam{Cause: errors.New("month must be 1-12")})
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("year is required")})
	}

	number, err := h.records.GetCurrentNumber(session.ExtractSessionFromGinContext(c), time.Month(month), year)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"currentNumber": number})
}

func (h *suratTugasHandler) handleGenerate(c *gin.Context) {
	draft := surattugas.Draft{}
	if err := c.ShouldBindBodyWith(&draft, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	outcome, err := h.pipeline.Generate(session.ExtractSessionFromGinContext(c), &draft)
	if err != nil {
		panic(err)
	}
	h.deliver(c, outcome)
}

func (h *suratTugasHandler) handleRegenerate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + id + "'")})
	}

	outcome, err := h.pipeline.Regenerate(session.ExtractSessionFromGinContext(c), id)
	if err != nil {
		panic(err)
	}
	h.deliver(c, outcome)
}

func (h *suratTugasHandler) deliver(c *gin.Context, outcome *surattugas.Outcome) {
	c.Header("Content-Disposition", `attachment; filename="`+outcome.Filename+`"`)
	c.Header("X-Record-Id", outcome.RecordID)
	c.Header("X-Document-Number", outcome.Number.String())
	if len(outcome.Warnings) > 0 {
		c.Header("X-Warnings", strings.Join(outcome.Warnings, "; "))
	}
	c.Data(http.StatusOK, docxContentType, outcome.Document)
}

type qrRequest struct {
	Url        string `json:"url" binding:"required"`
	DocumentID string `json:"documentId" binding:"required"`
}

func (h *suratTugasHandler) handleGenerateQr(c *gin.Context) {
	req := qrRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if _, err := uuid.Parse(req.DocumentID); err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("documentId must be a UUID")})
	}

	path, err := h.artifacts.GenerateAndStore(c.Request.Context(), req.Url, req.DocumentID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}

func (h *suratTugasHandler) handleQrImage(c *gin.Context) {
	documentID := c.Param("documentId")
	if _, err := uuid.Parse(documentID); err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("documentId must be a UUID")})
	}

	img, err := h.artifacts.Retrieve(documentID)
	if err != nil {
		panic(err)
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", img)
}
