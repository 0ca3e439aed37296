package servehttp

import (
	"net/http"

	"suratgen/client/directory"
	"suratgen/misc"
	"suratgen/session"

	"github.com/gin-gonic/gin"
)

type DirectoryTraits interface {
	SearchPersonnel(s *session.Session, q string) ([]directory.Personnel, error)
	GetPersonnelByID(s *session.Session, id string) (*directory.Personnel, error)
	SearchClients(s *session.Session, q string) ([]directory.Klien, error)
	GetClientByID(s *session.Session, id string) (*directory.Klien, error)
	ListClientTypes(s *session.Session) ([]string, error)
}

func RegisterDirectoryHandler(r *gin.Engine, d DirectoryTraits, middleWares ...gin.HandlerFunc) {
	handler := &directoryHandler{directory: d}

	identities := r.Group("/v1/identities", middleWares...)
	identities.GET("", handler.handleSearchPersonnel)
	identities.GET("/:id", handler.handlePersonnelDetail)

	clients := r.Group("/v1/clients", middleWares...)
	clients.GET("", handler.handleSearchClients)
	clients.GET("/types", handler.handleClientTypes)
	clients.GET("/:id", handler.handleClientDetail)
}

type directoryHandler struct {
	directory DirectoryTraits
}

func (h *directoryHandler) handleSearchPersonnel(c *gin.Context) {
	list, err := h.directory.SearchPersonnel(session.ExtractSessionFromGinContext(c), c.Query("q"))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: list, Total: uint64(len(list))})
}

func (h *directoryHandler) handlePersonnelDetail(c *gin.Context) {
	p, err := h.directory.GetPersonnelByID(session.ExtractSessionFromGinContext(c), c.Param("id"))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, p)
}

func (h *directoryHandler) handleSearchClients(c *gin.Context) {
	list, err := h.directory.SearchClients(session.ExtractSessionFromGinContext(c), c.Query("q"))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: list, Total: uint64(len(list))})
}

func (h *directoryHandler) handleClientDetail(c *gin.Context) {
	k, err := h.directory.GetClientByID(session.ExtractSessionFromGinContext(c), c.Param("id"))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, k)
}

func (h *directoryHandler) handleClientTypes(c *gin.Context) {
	types, err := h.directory.ListClientTypes(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, types)
}
