package httpclient_test

import (
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oidcd/oidcd/pkg/httpclient"
)

func newTestTLSServer(t *testing.T, handler http.Handler) (*httptest.Server, string) {
	t.Helper()
	ts := httptest.NewTLSServer(handler)

	cert := ts.Certificate()
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	return ts, string(pemBytes)
}

func TestNewTrustsExplicitCA(t *testing.T) {
	ts, caPEM := newTestTLSServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	}))
	defer ts.Close()

	client, err := httpclient.New(caPEM, 5*time.Second)
	require.NoError(t, err)

	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRejectsUntrustedServer(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	client, err := httpclient.New("", 5*time.Second)
	require.NoError(t, err)

	_, err = client.Get(ts.URL)
	require.Error(t, err)
}

func TestNewRejectsMalformedTrustAnchor(t *testing.T) {
	_, err := httpclient.New("not a pem certificate", 5*time.Second)
	require.Error(t, err)
}

func TestNewDoesNotFollowRedirects(t *testing.T) {
	mux := http.NewServeMux()
	ts, caPEM := newTestTLSServer(t, mux)
	defer ts.Close()
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})

	client, err := httpclient.New(caPEM, 5*time.Second)
	require.NoError(t, err)

	resp, err := client.Get(ts.URL + "/redirect")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestWithMaxRedirectsFollowsUpToLimit(t *testing.T) {
	mux := http.NewServeMux()
	ts, caPEM := newTestTLSServer(t, mux)
	defer ts.Close()
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "target")
	})

	client, err := httpclient.New(caPEM, 5*time.Second)
	require.NoError(t, err)
	client = httpclient.WithMaxRedirects(client, 1)

	resp, err := client.Get(ts.URL + "/redirect")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
