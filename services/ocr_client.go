package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ErrOCRUnavailable means no OCR service is configured.
var ErrOCRUnavailable = errors.New("OCR service is not configured")

// TextExtractor turns a screenshot into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
}

type OCRClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type ocrRequest struct {
	ImageBase64 string `json:"image_base64"`
	ContentType string `json:"content_type"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

func NewOCRClient(baseURL, token string, timeout time.Duration) *OCRClient {
	return &OCRClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExtractText posts the image to {BaseURL}/ocr and returns the recognised text.
func (c *OCRClient) ExtractText(ctx context.Context, image []byte, contentType string) (string, error) {
	if c == nil || c.BaseURL == "" {
		return "", ErrOCRUnavailable
	}

	jsonData, err := json.Marshal(ocrRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/ocr", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ocr response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("🔍 [OCR] /ocr returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("ocr failed: %d", resp.StatusCode)
	}

	var out ocrResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}
