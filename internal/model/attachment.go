package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Attachment 是随消息发送的图片。发送前以 data URL 编码。
type Attachment struct {
	Name      string `json:"name,omitempty"`
	MediaType string `json:"mediaType"`
	Data      []byte `json:"data"`
}

// Size 返回解码后的字节数。
func (a *Attachment) Size() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Data))
}

// DataURL 返回 data:<type>;base64,<payload> 形式的编码。
func (a *Attachment) DataURL() string {
	if a == nil {
		return ""
	}
	return "data:" + a.MediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

var errMalformedDataURL = errors.New("malformed data url")

// ParseDataURL 解析 DataURL 产生的字符串。空串返回 nil, nil。
func ParseDataURL(s string) (*Attachment, error) {
	if s == "" {
		return nil, nil
	}
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, errMalformedDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errMalformedDataURL
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("%w: only base64 payloads are supported", errMalformedDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedDataURL, err)
	}
	return &Attachment{MediaType: mediaType, Data: data}, nil
}

// LoadAttachment 读取文件并按内容嗅探媒体类型，不信任扩展名。
func LoadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	return &Attachment{
		Name:      path,
		MediaType: DetectMediaType(data),
		Data:      data,
	}, nil
}

// DetectMediaType 返回不带参数的 MIME 类型，例如 "image/png"。
func DetectMediaType(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}
