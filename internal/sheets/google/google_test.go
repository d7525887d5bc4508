package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finviz/internal/ingest"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: "/nonexistent/key.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFetchRecords_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Data"}
	if _, err := c.FetchRecords(context.Background()); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestToRows(t *testing.T) {
	rows := toRows([][]any{{"Date", "Category", "Amount"}, {"2023-01-15", "Food", 45.99, nil}})
	if len(rows) != 2 || rows[1][2] != "45.99" || rows[1][3] != "" {
		t.Fatalf("unexpected rows %#v", rows)
	}
}

func newTestClient(t *testing.T, body string) (*Client, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return newWithService(svc, "sheet-id", ""), &gotPath
}

func TestFetchRecords(t *testing.T) {
	c, path := newTestClient(t, `{"range":"Transactions!A1:C3","majorDimension":"ROWS","values":[["Date","Category","Amount"],["15/01/2023","Food","45,99"],["2023-01-18","Transport","32.50"]]}`)

	recs, err := c.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Amount.String() != "45.99" || recs[1].Category != "Transport" {
		t.Fatalf("unexpected records %+v", recs)
	}
	if !strings.Contains(*path, "sheet-id") || !strings.Contains(*path, "Transactions") {
		t.Fatalf("unexpected request path %s", *path)
	}
	if c.Name() != "sheets:sheet-id/Transactions" {
		t.Fatalf("unexpected name %s", c.Name())
	}
}

func TestFetchRecords_BadHeader(t *testing.T) {
	c, _ := newTestClient(t, `{"values":[["When","What","HowMuch"],["2023-01-15","Food","1"]]}`)
	_, err := c.FetchRecords(context.Background())
	var he *ingest.HeaderError
	if !errors.As(err, &he) {
		t.Fatalf("expected header error, got %v", err)
	}
}

