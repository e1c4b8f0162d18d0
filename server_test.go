package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/matting/cutout/rembg"
)

// stubRemover 可控的 AI 抠图替身
type stubRemover struct {
	img image.Image
	err error
}

func (s *stubRemover) Remove(_ context.Context, _ image.Image) (image.Image, error) {
	return s.img, s.err
}

func newTestRouter(remover rembg.Remover) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	newServer(remover, time.Hour).register(r)
	return r
}

func whiteRingPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if x == 0 || x == w-1 || y == 0 || y == h-1 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadSession(t *testing.T, r *gin.Engine, pngData []byte) string {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "test.png")
	require.NoError(t, err)
	_, err = part.Write(pngData)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/sessions", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ID     string `json:"id"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func getPNG(t *testing.T, r *gin.Engine, path string) image.Image {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	return img
}

func TestCreateSessionRequiresImage(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())

	rec := postJSON(t, r, "/api/sessions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionNotFound(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())

	rec := postJSON(t, r, "/api/sessions/nope/undo", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditingFlow(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 16, 16))

	// 自动去除：白色边框圈被清透明
	rec := postJSON(t, r, "/api/sessions/"+id+"/removal",
		map[string]any{"algorithm": "flood_fill", "tolerance": 10, "smoothing": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	img := getPNG(t, r, "/api/sessions/"+id+"/image?mode=preview")
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "边框应透明")
	_, _, _, a = img.At(5, 5).RGBA()
	assert.NotZero(t, a, "内部应保留")

	// 画一笔，编辑模式能看见标记
	rec = postJSON(t, r, "/api/sessions/"+id+"/strokes", map[string]any{
		"tool": "add", "radius": 2,
		"points": []map[string]int{{"x": 8, "y": 8}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	edit := getPNG(t, r, "/api/sessions/"+id+"/image?mode=edit")
	er, _, _, _ := edit.At(8, 8).RGBA()
	br, _, _, _ := img.At(8, 8).RGBA()
	assert.NotEqual(t, br, er, "编辑模式应叠加标记色")

	// Apply 后蒙版区域被擦掉
	rec = postJSON(t, r, "/api/sessions/"+id+"/apply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	applied := getPNG(t, r, "/api/sessions/"+id+"/image?mode=preview")
	_, _, _, a = applied.At(8, 8).RGBA()
	assert.Zero(t, a)

	// 撤销回退 Apply
	rec = postJSON(t, r, "/api/sessions/"+id+"/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var undoResp struct {
		Tier string `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &undoResp))
	assert.Equal(t, "base", undoResp.Tier)
}

func TestStrokeUndoBeforeBaseUndo(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 10, 10))

	postJSON(t, r, "/api/sessions/"+id+"/strokes", map[string]any{
		"tool": "add", "radius": 1, "points": []map[string]int{{"x": 5, "y": 5}},
	})

	rec := postJSON(t, r, "/api/sessions/"+id+"/undo", nil)
	var resp struct {
		Tier      string `json:"tier"`
		MaskEmpty bool   `json:"maskEmpty"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mask", resp.Tier)
	assert.True(t, resp.MaskEmpty)
}

func TestExportAttachment(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 8, 8))

	req := httptest.NewRequest("GET", "/api/sessions/"+id+"/export?filename=cut.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="cut.png"`, rec.Header().Get("Content-Disposition"))
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestExportTrim(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 12, 12))

	// 去掉边框后 trim 导出只剩 10x10 的内部主体
	rec := postJSON(t, r, "/api/sessions/"+id+"/removal",
		map[string]any{"algorithm": "flood_fill", "tolerance": 10, "smoothing": 0})
	require.Equal(t, http.StatusOK, rec.Code)

	img := getPNG(t, r, "/api/sessions/"+id+"/export?trim=1")
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestExportTrimBeforeRemoval(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 12, 12))

	// 全不透明的图没有可裁边框，trim=1 原尺寸导出
	img := getPNG(t, r, "/api/sessions/"+id+"/export?trim=1")
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 12, img.Bounds().Dy())
}

func TestThumbnailEndpoint(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 64, 32))

	img := getPNG(t, r, "/api/sessions/"+id+"/thumbnail?size=16")
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestRemBGOverride(t *testing.T) {
	replacement := image.NewNRGBA(image.Rect(0, 0, 5, 4))
	r := newTestRouter(&stubRemover{img: replacement})
	id := uploadSession(t, r, whiteRingPNG(t, 8, 8))

	rec := postJSON(t, r, "/api/sessions/"+id+"/rembg", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct{ Width, Height int }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Width)
	assert.Equal(t, 4, resp.Height)
}

func TestRemBGFailureKeepsState(t *testing.T) {
	r := newTestRouter(&stubRemover{err: errors.New("model offline")})
	id := uploadSession(t, r, whiteRingPNG(t, 8, 8))

	rec := postJSON(t, r, "/api/sessions/"+id+"/rembg", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// 失败后会话原样可用
	img := getPNG(t, r, fmt.Sprintf("/api/sessions/%s/image", id))
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestUnknownAlgorithmRejected(t *testing.T) {
	r := newTestRouter(rembg.NewDefaultRemBG())
	id := uploadSession(t, r, whiteRingPNG(t, 8, 8))

	rec := postJSON(t, r, "/api/sessions/"+id+"/removal",
		map[string]any{"algorithm": "magic", "tolerance": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
