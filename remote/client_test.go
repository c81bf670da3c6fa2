package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/utils"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWith(server.URL, server.URL, "test-token")
}

func TestGetJobNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.GetJob(context.Background(), 99)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}

func TestServerErrorCarriesStatusAndBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.GetJob(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v", err)
	}
}

func TestAuthorizationPrefersContextToken(t *testing.T) {
	var got string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.Job{ID: 1})
	})

	if _, err := c.GetJob(context.Background(), 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "Bearer test-token" {
		t.Fatalf("authorization = %q", got)
	}

	ctx := utils.SetTokenInContext(context.Background(), "per-request")
	if _, err := c.GetJob(ctx, 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "Bearer per-request" {
		t.Fatalf("authorization = %q", got)
	}
}

func TestListJobsNormalizesQuery(t *testing.T) {
	var got models.JobListQuery
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs/list" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(models.JobsConnection{PageSize: 10})
	})

	if _, err := c.ListJobs(context.Background(), models.JobListQuery{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.PageSize != 10 || got.StatusFilter != models.JobStatusFilterAll {
		t.Fatalf("query sent as %+v", got)
	}
}

func TestCreateJobValidatesInput(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("invalid input must not reach the server")
	})
	_, err := c.CreateJob(context.Background(), &models.NewJob{Description: "no title or status"})
	if err == nil {
		t.Fatalf("expected a validation error")
	}
}

func TestSearchProductsEscapesName(t *testing.T) {
	var got string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("name")
		json.NewEncoder(w).Encode([]models.Product{{ID: 1, Name: "2x4 & Co"}})
	})

	hits, err := c.SearchProducts(context.Background(), "2x4 & Co")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got != "2x4 & Co" {
		t.Fatalf("server saw name %q", got)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestDecodeProductsShapes(t *testing.T) {
	bare := json.RawMessage(`[{"id":1,"name":"Caulk"}]`)
	wrapped := json.RawMessage(`{"products":[{"id":2,"name":"Grout"}]}`)
	spring := json.RawMessage(`{"content":[{"id":3,"name":"Tile"}]}`)

	for _, raw := range []json.RawMessage{bare, wrapped, spring} {
		list, err := decodeProducts(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if len(list) != 1 {
			t.Fatalf("decode %s: got %d products", raw, len(list))
		}
	}

	if _, err := decodeProducts(json.RawMessage(`"nonsense"`)); err == nil {
		t.Fatalf("garbage must error")
	}
}

func TestExtractReceiptMultipart(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/receipts/process" {
			t.Errorf("path = %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "receipt.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(models.ReceiptDraft{Vendor: "Home Depot"})
	})

	draft, err := c.ExtractReceipt(context.Background(), "receipt.jpg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if draft.Vendor != "Home Depot" {
		t.Fatalf("draft = %+v", draft)
	}
}
