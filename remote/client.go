package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/utils"
)

// Client talks to the business backend and the receipt extraction service.
// No retries and no client-side cancellation beyond ctx: a call either
// resolves or the caller's workflow stalls with it.
type Client struct {
	baseURL string
	scanURL string
	token   string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: config.GetBackendBaseURL(),
		scanURL: config.GetScanBaseURL(),
		token:   config.GetAPIToken(),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWith is for tests and tools that point at a non-default backend.
func NewClientWith(baseURL string, scanURL string, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		scanURL: strings.TrimRight(scanURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method string, endpoint string, payload interface{}, dest interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return utils.ErrorRecordNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if dest == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dest)
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	token := c.token
	if t, ok := utils.GetTokenFromContext(ctx); ok && t != "" {
		token = t
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

/* jobs */

func (c *Client) GetJob(ctx context.Context, id int) (*models.Job, error) {
	var job models.Job
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/api/jobs/%d", c.baseURL, id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListJobs(ctx context.Context, query models.JobListQuery) (*models.JobsConnection, error) {
	query = query.Normalized()
	var page models.JobsConnection
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/jobs/list", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateJob(ctx context.Context, input *models.NewJob) (*models.Job, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	var job models.Job
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/jobs/create", input, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) UpdateJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	var updated models.Job
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/api/jobs/%d", c.baseURL, job.ID), job, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteJob(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/api/jobs/%d", c.baseURL, id), nil, nil)
}

/* materials */

func (c *Client) AddMaterial(ctx context.Context, jobId int, material models.NewMaterial) (*models.Sale, error) {
	if err := utils.ValidateStruct(&material); err != nil {
		return nil, err
	}
	var sale models.Sale
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/api/jobs/%d/materials", c.baseURL, jobId), material, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (c *Client) RemoveMaterial(ctx context.Context, jobId int, saleId int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/api/jobs/%d/materials/%d", c.baseURL, jobId, saleId), nil, nil)
}

func (c *Client) UpdateMaterial(ctx context.Context, jobId int, saleId int, update models.MaterialQuantityUpdate) (*models.Sale, error) {
	if err := utils.ValidateStruct(&update); err != nil {
		return nil, err
	}
	var sale models.Sale
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/api/jobs/%d/materials/%d", c.baseURL, jobId, saleId), update, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

/* products */

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/products", nil, &raw); err != nil {
		return nil, err
	}
	return decodeProducts(raw)
}

func (c *Client) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("%s/api/products/search?name=%s", c.baseURL, url.QueryEscape(name))
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	return decodeProducts(raw)
}

func (c *Client) CreateProduct(ctx context.Context, input models.NewProduct) (*models.Product, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, err
	}
	var product models.Product
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/products", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// decodeProducts tolerates the response shapes the products endpoint has
// been seen returning: a bare array, {"products": [...]}, or a Spring-style
// {"content": [...]}.
func decodeProducts(raw json.RawMessage) ([]models.Product, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []models.Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Products []models.Product `json:"products"`
		Content  []models.Product `json:"content"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected products response: %v", err)
	}
	if wrapped.Products != nil {
		return wrapped.Products, nil
	}
	return wrapped.Content, nil
}

/* receipt extraction */

// ExtractReceipt sends the raw file to the extraction service. A failure
// here is recoverable: the attachment is already persisted locally by the
// time this is called.
func (c *Client) ExtractReceipt(ctx context.Context, filename string, file io.Reader) (*models.ReceiptDraft, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scanURL+"/api/receipts/process", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extraction api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var draft models.ReceiptDraft
	if err := json.Unmarshal(body, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
