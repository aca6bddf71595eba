package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/handler"
	"github.com/seiflotfy/huffpack/internal/logger"
	"github.com/seiflotfy/huffpack/internal/service"
)

func newEngine(maxBody int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewCodecService(huffpack.New(), logger.NewWriter(io.Discard))
	r := gin.New()
	Register(r, Dependencies{CodecHandler: handler.NewCodecHandler(svc, maxBody)})
	return r
}

func do(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := do(newEngine(0), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAlgorithmsRoutes(t *testing.T) {
	r := newEngine(0)

	w := do(r, http.MethodGet, "/algorithms", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listing service.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Current != "huffman" || len(listing.Algorithms) != 4 {
		t.Fatalf("listing = %+v", listing)
	}

	w = do(r, http.MethodGet, "/algorithms/zstd", nil)
	var info huffpack.Info
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil || info.Name != "Zstd" {
		t.Fatalf("info = %+v, %v", info, err)
	}
	if w := do(r, http.MethodGet, "/algorithms/lzma", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown info status = %d", w.Code)
	}

	if w := do(r, http.MethodPut, "/algorithms/current", []byte(`{"name":"bzip2"}`)); w.Code != http.StatusNoContent {
		t.Fatalf("select status = %d: %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodPut, "/algorithms/current", []byte(`{"name":"lzma"}`)); w.Code != http.StatusNotFound {
		t.Fatalf("select unknown status = %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/algorithms/current", []byte(`{}`)); w.Code != http.StatusBadRequest {
		t.Fatalf("select without name status = %d", w.Code)
	}

	w = do(r, http.MethodGet, "/algorithms", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil || listing.Current != "bzip2" {
		t.Fatalf("after select: %+v, %v", listing, err)
	}
}

func TestCompressDecompressRoutes(t *testing.T) {
	r := newEngine(0)
	text := strings.Repeat("round trip over http ", 40)

	for _, algo := range []string{"", "zlib", "zstd", "bzip2"} {
		target := "/compress"
		if algo != "" {
			target += "?algorithm=" + algo
		}
		w := do(r, http.MethodPost, target, []byte(text))
		if w.Code != http.StatusOK {
			t.Fatalf("%q: compress status = %d: %s", algo, w.Code, w.Body)
		}
		wantAlgo := algo
		if wantAlgo == "" {
			wantAlgo = "huffman"
		}
		if got := w.Header().Get(handler.HeaderAlgorithm); got != wantAlgo {
			t.Fatalf("%q: algorithm header = %q", algo, got)
		}
		if w.Header().Get(handler.HeaderRate) == "" {
			t.Fatalf("%q: missing rate header", algo)
		}

		d := do(r, http.MethodPost, "/decompress", w.Body.Bytes())
		if d.Code != http.StatusOK || d.Body.String() != text {
			t.Fatalf("%q: decompress = %d %q", algo, d.Code, d.Body.String())
		}
	}
}

func TestCompressErrors(t *testing.T) {
	r := newEngine(16)

	if w := do(r, http.MethodPost, "/compress", nil); w.Code != http.StatusNoContent {
		t.Fatalf("empty body status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/compress?algorithm=lzma", []byte("x")); w.Code != http.StatusNotFound {
		t.Fatalf("unknown algorithm status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/compress", []byte{0xff, 0xfe}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid UTF-8 status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/compress", bytes.Repeat([]byte("x"), 17)); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body status = %d", w.Code)
	}
}

func TestDecompressErrors(t *testing.T) {
	r := newEngine(0)
	for _, body := range [][]byte{
		[]byte("garbage"),
		[]byte("ZSTDgarbage"),
		{7, 'h', 'u', 'f', 'f', 'm', 'a', 'n', 1, 0},
	} {
		if w := do(r, http.MethodPost, "/decompress", body); w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("decompress(%q) status = %d", body, w.Code)
		}
	}
}

func TestStatsRoute(t *testing.T) {
	r := newEngine(0)
	w := do(r, http.MethodPost, "/stats", []byte("hello world\nbye"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st huffpack.TextStats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	want := huffpack.TextStats{Length: 15, Bytes: 15, Lines: 2, Words: 3}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
}
