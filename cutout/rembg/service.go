package rembg

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"
	"time"

	nhttp "github.com/chaos-io/matting/util/http"
)

// removeTimeout 远端推理比较慢，给单次调用放宽到 2 分钟
const removeTimeout = 2 * time.Minute

// ServiceRemBG 基于 HTTP 的远端抠图实现
// 整图替换是原子的：任何一步失败都返回错误，调用方状态不变
type ServiceRemBG struct {
	baseURL string
	cli     nhttp.IClient
}

func NewServiceRemBG(baseURL string) *ServiceRemBG {
	return &ServiceRemBG{
		baseURL: baseURL,
		cli:     nhttp.NewHTTPClient(),
	}
}

type removeResp struct {
	// Image PNG 字节的 base64 编码
	Image string `json:"image"`
}

/*
	curl -X POST "$BASE_URL/api/remove" \
	  -F "image=@my_image.png" \
	  -F "format=png"

{"image": "<base64 png>"}
*/
func (s *ServiceRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "input.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	_ = writer.WriteField("format", "png")
	_ = writer.Close()

	resp := &removeResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: s.baseURL + "/api/remove",
		Method:     "POST",
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   resp,
		Timeout:    removeTimeout,
	}
	if err := s.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Image)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	out, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	slog.Debug("rembg replacement received", "bytes", len(data),
		"width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	return out, nil
}
