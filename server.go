package main

import (
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	"github.com/chaos-io/matting/cutout"
	"github.com/chaos-io/matting/cutout/rembg"
	"github.com/chaos-io/matting/raster"
	"github.com/chaos-io/matting/session"
	"github.com/chaos-io/matting/util"
)

// server 会话注册表 + HTTP 接口
// 每个会话单写者：entry 级互斥锁把同一会话的手势串行化
type server struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	remover  rembg.Remover
}

type sessionEntry struct {
	mu       sync.Mutex
	sess     *session.Session
	lastUsed time.Time
}

func newServer(remover rembg.Remover, ttl time.Duration) *server {
	return &server{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		remover:  remover,
	}
}

func (s *server) register(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id/image", s.getImage)
	api.GET("/sessions/:id/thumbnail", s.getThumbnail)
	api.POST("/sessions/:id/removal", s.runRemoval)
	api.POST("/sessions/:id/strokes", s.paintStroke)
	api.POST("/sessions/:id/undo", s.undo)
	api.POST("/sessions/:id/apply", s.apply)
	api.POST("/sessions/:id/rembg", s.runRemBG)
	api.GET("/sessions/:id/export", s.export)
}

func (s *server) add(sess *session.Session) string {
	id := ksuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{sess: sess, lastUsed: time.Now()}
	s.mu.Unlock()
	return id
}

func (s *server) get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if ok {
		e.lastUsed = time.Now()
	}
	return e, ok
}

// reapSessions 回收超过 ttl 没动过的会话
func (s *server) reapSessions() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	n := 0
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	s.mu.Unlock()
	if n > 0 {
		slog.Info("reaped idle sessions", "count", n)
	}
}

func (s *server) createSession(c *gin.Context) {
	var img image.Image
	var err error

	if file, ferr := c.FormFile("image"); ferr == nil {
		f, oerr := file.Open()
		if oerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": oerr.Error()})
			return
		}
		defer func() {
			_ = f.Close()
		}()
		r, derr := raster.Decode(f)
		if derr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": derr.Error()})
			return
		}
		img = r.ToImage()
	} else if url := c.PostForm("url"); url != "" {
		img, err = util.DownloadImage(url)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file or url is required"})
		return
	}

	sess, err := session.New(img)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.add(sess)
	w, h := sess.Size()
	slog.Info("session created", "id", id, "width", w, "height", h)
	c.JSON(http.StatusOK, gin.H{"id": id, "width": w, "height": h})
}

func (s *server) withSession(c *gin.Context, fn func(*session.Session)) {
	e, ok := s.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sess)
}

func (s *server) getImage(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		mode := cutout.ModeEdit
		if c.Query("mode") == string(cutout.ModePreview) {
			mode = cutout.ModePreview
		}
		data, err := sess.Render(mode).PNGBytes()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", data)
	})
}

func (s *server) getThumbnail(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		size, err := strconv.Atoi(c.DefaultQuery("size", "256"))
		if err != nil || size <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
			return
		}
		thumb, err := sess.Render(cutout.ModePreview).Thumbnail(size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		data, err := thumb.PNGBytes()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", data)
	})
}

type removalReq struct {
	Algorithm string `json:"algorithm"`
	Tolerance int    `json:"tolerance"`
	Smoothing int    `json:"smoothing"`
}

func (s *server) runRemoval(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		var req removalReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		algo, err := cutout.ParseAlgorithm(req.Algorithm)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// 引擎不校验参数范围，入口统一夹取
		tolerance := clamp(req.Tolerance, 1, 100)
		smoothing := clamp(req.Smoothing, 0, 10)

		defer util.Trace(fmt.Sprintf("removal %s", algo))()
		if err := sess.RunRemoval(algo, tolerance, smoothing); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"baseHistory": sess.BaseHistoryLen()})
	})
}

type strokeReq struct {
	Tool   string `json:"tool"`
	Radius int    `json:"radius"`
	Points []struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"points"`
}

func (s *server) paintStroke(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		var req strokeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tool, ok := cutout.ParseBrushTool(req.Tool)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown brush tool %q", req.Tool)})
			return
		}
		radius := req.Radius
		if radius < 1 {
			radius = 1
		}

		if err := sess.BeginStroke(tool, radius); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		defer sess.EndStroke()
		for _, p := range req.Points {
			_ = sess.Paint(p.X, p.Y)
		}
		c.JSON(http.StatusOK, gin.H{"maskHistory": sess.MaskHistoryLen()})
	})
}

func (s *server) undo(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		res := sess.Undo()
		c.JSON(http.StatusOK, gin.H{"tier": res.Tier, "maskEmpty": res.MaskEmpty})
	})
}

func (s *server) apply(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		sess.Apply()
		c.JSON(http.StatusOK, gin.H{"baseHistory": sess.BaseHistoryLen()})
	})
}

func (s *server) runRemBG(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		defer util.Trace("rembg override")()
		out, err := s.remover.Remove(c.Request.Context(), sess.BaseImage())
		if err != nil {
			// 可恢复失败：会话状态原样保留
			slog.Warn("rembg call failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if err := sess.Override(out); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		w, h := sess.Size()
		c.JSON(http.StatusOK, gin.H{"width": w, "height": h})
	})
}

func (s *server) export(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		out := sess.Render(cutout.ModePreview)
		// 还没抠过图就没有透明边框可裁，跳过
		if c.Query("trim") == "1" && out.HasUsefulAlpha() {
			trimmed, err := out.TrimToForeground(0)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			out = trimmed
		}
		data, err := out.PNGBytes()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		filename := c.DefaultQuery("filename", "matting.png")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "image/png", data)
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
