// Package api exposes the vault over a localhost HTTP API.
package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
	"github.com/its-jojoo/ottervault/internal/core"
	"github.com/its-jojoo/ottervault/internal/usecase/capture"
	"github.com/its-jojoo/ottervault/internal/usecase/search"
	"github.com/its-jojoo/ottervault/internal/usecase/vault"
)

const maxPasteBytes = 32 << 20

// textMIMEs are the form fields read as textual representations.
var textMIMEs = []string{core.MIMEHTML, core.MIMEURIList, core.MIMEPlain}

type Server struct {
	// ctx outlives individual requests: pastes run to completion even when
	// the client hangs up.
	ctx      context.Context
	store    *vault.Store
	query    *vault.Query
	capture  *capture.Service
	search   *search.Service
	notifier *storage.Notifier
	log      zerolog.Logger
}

type Deps struct {
	Store    *vault.Store
	Query    *vault.Query
	Capture  *capture.Service
	Search   *search.Service
	Notifier *storage.Notifier
}

func NewServer(ctx context.Context, d Deps, log zerolog.Logger) *Server {
	return &Server{
		ctx:      ctx,
		store:    d.Store,
		query:    d.Query,
		capture:  d.Capture,
		search:   d.Search,
		notifier: d.Notifier,
		log:      log.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	g := r.Group("/api")
	g.GET("/items", s.listItems)
	g.GET("/items/:id", s.getItem)
	g.DELETE("/items/:id", s.removeItem)
	g.DELETE("/items", s.clearItems)
	g.GET("/query", s.getQuery)
	g.PUT("/query", s.setQuery)
	g.POST("/paste", s.paste)
	g.GET("/events", s.events)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// listItems filters with ?q= when given, otherwise with the persisted query.
func (s *Server) listItems(c *gin.Context) {
	opt := search.Options{}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		opt.Limit = n
	}

	var items []core.Item
	if q, ok := c.GetQuery("q"); ok {
		items = s.search.Query(q, opt)
	} else {
		items = s.search.Visible(c.Request.Context(), opt)
	}
	RespondSuccess(c, items)
}

func (s *Server) getItem(c *gin.Context) {
	it, ok := s.store.Get(c.Param("id"))
	if !ok {
		RespondError(c, http.StatusNotFound, "Item not found")
		return
	}
	RespondSuccess(c, it)
}

func (s *Server) removeItem(c *gin.Context) {
	if err := s.store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, http.StatusInternalServerError, "Failed to remove item: "+err.Error())
		return
	}
	RespondSuccess(c, nil)
}

func (s *Server) clearItems(c *gin.Context) {
	if err := vault.ClearAll(c.Request.Context(), s.store, s.query); err != nil {
		RespondError(c, http.StatusInternalServerError, "Failed to clear vault: "+err.Error())
		return
	}
	RespondSuccess(c, nil)
}

type queryBody struct {
	Query string `json:"query"`
}

func (s *Server) getQuery(c *gin.Context) {
	RespondSuccess(c, queryBody{Query: s.query.Get(c.Request.Context())})
}

func (s *Server) setQuery(c *gin.Context) {
	var req queryBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := s.query.Set(c.Request.Context(), req.Query); err != nil {
		RespondError(c, http.StatusInternalServerError, "Failed to save query: "+err.Error())
		return
	}
	RespondSuccess(c, req)
}

// paste accepts a form with one field per textual MIME type and image parts
// under "file".
func (s *Server) paste(c *gin.Context) {
	ev, err := pasteEventFromRequest(c.Writer, c.Request)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid paste: "+err.Error())
		return
	}

	p := s.capture.Paste(s.ctx, ev)
	item, err := p.Wait(c.Request.Context())
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Respond(c, http.StatusAccepted, "pending", p.Rule, nil)
	case err != nil:
		RespondError(c, http.StatusInternalServerError, "Failed to save paste: "+err.Error())
	case item == nil:
		RespondSuccessMessage(c, "declined", nil)
	default:
		Respond(c, http.StatusCreated, "success", p.Rule, item)
	}
}

func pasteEventFromRequest(w http.ResponseWriter, r *http.Request) (*core.PasteEvent, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPasteBytes)
	if err := r.ParseMultipartForm(maxPasteBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}

	ev := core.NewPasteEvent()
	for _, m := range textMIMEs {
		if vals, ok := r.PostForm[m]; ok && len(vals) > 0 {
			ev.With(m, vals[0])
		}
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["file"] {
			b, err := readPart(fh)
			if err != nil {
				return nil, err
			}
			ev.Attach(b)
		}
	}
	return ev, nil
}

// readPart trusts the part's Content-Type when it names a supported image,
// and sniffs the bytes otherwise.
func readPart(fh *multipart.FileHeader) (core.Blob, error) {
	f, err := fh.Open()
	if err != nil {
		return core.Blob{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return core.Blob{}, err
	}

	mime := fh.Header.Get("Content-Type")
	if !core.IsImageMIME(mime) {
		if sniffed, err := core.DetectImage(data); err == nil {
			mime = sniffed
		}
	}
	return core.Blob{MIME: mime, Data: data}, nil
}
