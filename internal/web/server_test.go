package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dcrodman/bfcrypt/internal/core"
	"github.com/dcrodman/bfcrypt/internal/data"
	"github.com/dcrodman/bfcrypt/internal/keycache"
)

func newTestServer(t *testing.T, withDB bool) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := &Server{
		Config:  &core.Config{},
		Logger:  logger,
		Ciphers: keycache.New(time.Minute, time.Minute, logger),
	}
	if withDB {
		db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
		if err != nil {
			t.Fatalf("error initializing test database: %s", err)
		}
		if err := data.Migrate(db); err != nil {
			t.Fatalf("error migrating test database: %s", err)
		}
		t.Cleanup(func() { data.Close(db) })
		s.DB = db
	}
	return s.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("error marshaling request: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("error decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestServer_Root(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bfcrypt") {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_EncryptDecrypt(t *testing.T) {
	h := newTestServer(t, false)

	rec := doRequest(t, h, http.MethodPost, "/api/encrypt", encryptRequest{Key: "TESTKEY1", Plaintext: "HELLO!!!"})
	if rec.Code != http.StatusOK {
		t.Fatalf("encrypt status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var enc encryptResponse
	decodeResponse(t, rec, &enc)
	if enc.Ciphertext != "c8bef22b4473d235" {
		t.Errorf("ciphertext = %s, want c8bef22b4473d235", enc.Ciphertext)
	}

	// Upper case and surrounding whitespace are accepted, as pasted from elsewhere.
	rec = doRequest(t, h, http.MethodPost, "/api/decrypt", decryptRequest{Key: "TESTKEY1", Ciphertext: " C8BEF22B4473D235\n"})
	if rec.Code != http.StatusOK {
		t.Fatalf("decrypt status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var dec decryptResponse
	decodeResponse(t, rec, &dec)
	if dec.Plaintext != "HELLO!!!" {
		t.Errorf("plaintext = %q, want HELLO!!!", dec.Plaintext)
	}
}

func TestServer_Validation(t *testing.T) {
	h := newTestServer(t, false)
	tests := []struct {
		name    string
		path    string
		body    interface{}
		wantErr string
	}{
		{
			name:    "encrypt without key",
			path:    "/api/encrypt",
			body:    encryptRequest{Plaintext: "HELLO"},
			wantErr: "key and plaintext are required",
		},
		{
			name:    "encrypt without plaintext",
			path:    "/api/encrypt",
			body:    encryptRequest{Key: "TESTKEY1"},
			wantErr: "key and plaintext are required",
		},
		{
			name:    "encrypt with short key",
			path:    "/api/encrypt",
			body:    encryptRequest{Key: "abc", Plaintext: "HELLO"},
			wantErr: "key must be between 4 and 56 bytes",
		},
		{
			name:    "decrypt with blank ciphertext",
			path:    "/api/decrypt",
			body:    decryptRequest{Key: "TESTKEY1", Ciphertext: "   "},
			wantErr: "key and ciphertext are required",
		},
		{
			name:    "decrypt with odd hex",
			path:    "/api/decrypt",
			body:    decryptRequest{Key: "TESTKEY1", Ciphertext: "abc"},
			wantErr: "ciphertext must be valid hex: hex string length must be even, got 3",
		},
		{
			name:    "decrypt with non-hex",
			path:    "/api/decrypt",
			body:    decryptRequest{Key: "TESTKEY1", Ciphertext: "zz"},
			wantErr: "ciphertext must be valid hex: invalid hex string",
		},
		{
			name:    "decrypt partial block",
			path:    "/api/decrypt",
			body:    decryptRequest{Key: "TESTKEY1", Ciphertext: "c8bef22b4473d2"},
			wantErr: "blowfish: ciphertext length 7 is not a multiple of 8",
		},
		{
			name:    "malformed json",
			path:    "/api/encrypt",
			body:    "not an object",
			wantErr: "invalid request body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var got errorResponse
			decodeResponse(t, rec, &got)
			if got.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", got.Error, tt.wantErr)
			}
		})
	}
}

func TestServer_VaultRoutesNeedDB(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/ciphertexts", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/ciphertexts without a db = %d, want 404", rec.Code)
	}
}

func TestServer_Vault(t *testing.T) {
	h := newTestServer(t, true)

	rec := doRequest(t, h, http.MethodPost, "/api/ciphertexts", ciphertextRecord{Name: "greeting", Ciphertext: "c8bef22b4473d235"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/api/ciphertexts", ciphertextRecord{Name: "greeting", Ciphertext: "c8bef22b4473d235"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate save status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/ciphertexts", ciphertextRecord{Name: "partial", Ciphertext: "c8be"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("partial block save status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/ciphertexts/greeting", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got ciphertextRecord
	decodeResponse(t, rec, &got)
	if got.Name != "greeting" || got.Ciphertext != "c8bef22b4473d235" {
		t.Errorf("get returned %+v", got)
	}

	// The stored ciphertext feeds straight into decrypt.
	rec = doRequest(t, h, http.MethodPost, "/api/decrypt", decryptRequest{Key: "TESTKEY1", Ciphertext: got.Ciphertext})
	var dec decryptResponse
	decodeResponse(t, rec, &dec)
	if dec.Plaintext != "HELLO!!!" {
		t.Errorf("decrypting the stored ciphertext gave %q", dec.Plaintext)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/ciphertexts", nil)
	var list []ciphertextRecord
	decodeResponse(t, rec, &list)
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"greeting"}, names); diff != "" {
		t.Errorf("list mismatch; diff:\n%s", diff)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/ciphertexts/greeting", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doRequest(t, h, http.MethodDelete, "/api/ciphertexts/greeting", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/api/ciphertexts/greeting", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}
