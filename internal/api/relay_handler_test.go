package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRelayTestRouter(baseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRelayHandler(baseURL, zap.NewNop())
	router := gin.New()
	router.POST("/api/functions/create-checkout-session", handler.CreateCheckoutSession)
	return router
}

func TestRelay_ForwardsBodyAndAuthorization(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://checkout.stripe.test/cs_1"}`))
	}))
	defer upstream.Close()

	router := newRelayTestRouter(upstream.URL + "/")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-checkout-session",
		bytes.NewBufferString(`{"planCode":"PRO_MONTH"}`))
	req.Header.Set("Authorization", "Bearer test-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://checkout.stripe.test/cs_1"}`, w.Body.String())
	assert.Equal(t, "/createCheckoutSession", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"planCode":"PRO_MONTH"}`, string(gotBody))
}

func TestRelay_PreservesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"card declined"}`))
	}))
	defer upstream.Close()

	router := newRelayTestRouter(upstream.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-checkout-session",
		bytes.NewBufferString(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"error":"card declined"}`, w.Body.String())
}

func TestRelay_WrapsNonJSONUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	}))
	defer upstream.Close()

	router := newRelayTestRouter(upstream.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-checkout-session",
		bytes.NewBufferString(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, w.Body.String())
}

func TestRelay_UnreachableUpstream(t *testing.T) {
	// A closed server port forces a transport-level failure.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	router := newRelayTestRouter(upstream.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-checkout-session",
		bytes.NewBufferString(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
