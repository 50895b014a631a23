package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMistralOCRURL = "https://api.mistral.ai/v1/ocr"
	defaultOCRModel      = "mistral-ocr-latest"
)

type PdfScrapeResponsePage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type OcrResponse struct {
	Pages []PdfScrapeResponsePage `json:"pages"`
}

// MistralOCR extracts the text of PDF documents with the Mistral OCR API.
type MistralOCR struct {
	APIKey  string
	BaseURL string
	Model   string
	client  *http.Client
}

// NewMistralOCR returns nil when apiKey is empty, which disables PDF support in the scraper.
func NewMistralOCR(apiKey string) *MistralOCR {
	if apiKey == "" {
		return nil
	}
	return &MistralOCR{
		APIKey:  apiKey,
		BaseURL: defaultMistralOCRURL,
		Model:   defaultOCRModel,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// Extract returns the markdown of every page of the document at docURL.
func (m *MistralOCR) Extract(ctx context.Context, docURL string) (string, error) {
	if m.APIKey == "" {
		return "", errors.New("MISTRAL_API_KEY is not set")
	}
	docURL = strings.Replace(docURL, "http://", "https://", 1)

	reqBody := map[string]any{
		"model": m.Model,
		"document": map[string]string{
			"type":         "document_url",
			"document_url": docURL,
		},
		"include_image_base64": false,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR request failed with status: %s, body: %s", resp.Status, string(body))
	}

	var ocrResponse OcrResponse
	if err := json.Unmarshal(body, &ocrResponse); err != nil {
		return "", fmt.Errorf("failed to unmarshal OCR response: %w", err)
	}

	var sb strings.Builder
	for _, page := range ocrResponse.Pages {
		sb.WriteString(fmt.Sprintf("- Page %d -\n", page.Index))
		sb.WriteString(page.Markdown)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
