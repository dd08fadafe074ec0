package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raywall/music-api-toolkit/pkg/method"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfigs devolve sempre o mesmo template.
type fakeConfigs struct {
	cfg *method.Config
	err error
}

func (f *fakeConfigs) Get(_ context.Context, _, _ string) (*method.Config, error) {
	return f.cfg, f.err
}

func TestExecuteGETComParams(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"result":{"songs":[{"name":"x"}]}}`))
	}))
	defer srv.Close()

	exec := New(&fakeConfigs{cfg: &method.Config{
		URL:    srv.URL + "/search",
		Method: "GET",
		Params: map[string]interface{}{
			"s":      "{{keyword}}",
			"offset": "{{(page-1)*size}}",
			"limit":  "{{size}}",
		},
		Transform: "response.result",
	}}, 5*time.Second)

	out, err := exec.Execute(context.Background(), "netease", "search",
		map[string]string{"keyword": "foo", "page": "2", "size": "20"})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "s=foo")
	assert.Contains(t, gotQuery, "offset=20")
	assert.Contains(t, gotQuery, "limit=20")
	assert.Equal(t, "MusicAPIToolkit/1.0", gotUA)

	// Transform aplicado: o envelope "result" foi desembrulhado
	m := out.(map[string]interface{})
	assert.Len(t, m["songs"].([]interface{}), 1)
}

func TestExecutePOSTComBody(t *testing.T) {
	var gotBody map[string]interface{}
	var gotContentType, gotCustom string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Custom")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	exec := New(&fakeConfigs{cfg: &method.Config{
		URL:     srv.URL + "/playlist",
		Method:  "POST",
		Headers: map[string]string{"X-Custom": "abc"},
		Body: map[string]interface{}{
			"id":   "{{id}}",
			"page": 1,
		},
	}}, 5*time.Second)

	_, err := exec.Execute(context.Background(), "netease", "playlist",
		map[string]string{"id": "42"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "abc", gotCustom)
	assert.Equal(t, "42", gotBody["id"])
	assert.Equal(t, float64(1), gotBody["page"])
}

func TestExecuteHeaderDoTemplateVence(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	exec := New(&fakeConfigs{cfg: &method.Config{
		URL:     srv.URL,
		Method:  "GET",
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
	}}, 5*time.Second)

	_, err := exec.Execute(context.Background(), "netease", "toplists", nil)
	require.NoError(t, err)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

func TestExecuteTransformFalhaEhFailSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[1,2,3]}`))
	}))
	defer srv.Close()

	exec := New(&fakeConfigs{cfg: &method.Config{
		URL:       srv.URL,
		Method:    "GET",
		Transform: "response.campo.que.nao.existe",
	}}, 5*time.Second)

	// Falha no transform não propaga: volta a resposta original
	out, err := exec.Execute(context.Background(), "netease", "toplists", nil)
	require.NoError(t, err)

	m := out.(map[string]interface{})
	assert.Len(t, m["data"].([]interface{}), 3)
}

func TestExecuteErros(t *testing.T) {
	// Config indisponível propaga
	exec := New(&fakeConfigs{err: method.ErrConfigUnavailable}, time.Second)
	_, err := exec.Execute(context.Background(), "netease", "search", nil)
	assert.True(t, errors.Is(err, method.ErrConfigUnavailable))

	// Config sem URL vira ErrConfigMissing
	exec = New(&fakeConfigs{cfg: &method.Config{}}, time.Second)
	_, err = exec.Execute(context.Background(), "netease", "search", nil)
	assert.True(t, errors.Is(err, method.ErrConfigMissing))

	// Falha de rede vira ErrUpstreamRequest
	exec = New(&fakeConfigs{cfg: &method.Config{URL: "http://127.0.0.1:1", Method: "GET"}}, 500*time.Millisecond)
	_, err = exec.Execute(context.Background(), "netease", "search", nil)
	assert.True(t, errors.Is(err, ErrUpstreamRequest))

	// Corpo não-JSON também
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>erro</html>`))
	}))
	defer srv.Close()

	exec = New(&fakeConfigs{cfg: &method.Config{URL: srv.URL, Method: "GET"}}, time.Second)
	_, err = exec.Execute(context.Background(), "netease", "search", nil)
	assert.True(t, errors.Is(err, ErrUpstreamRequest))
}

func TestExecuteKuwoReescreveURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cover":"http://x.kwcdn.kuwo.cn/img.jpg","name":"faixa"}`))
	}))
	defer srv.Close()

	exec := New(&fakeConfigs{cfg: &method.Config{URL: srv.URL, Method: "GET"}}, time.Second)

	out, err := exec.Execute(context.Background(), "kuwo", "toplists", nil)
	require.NoError(t, err)

	m := out.(map[string]interface{})
	assert.Equal(t, "/proxy?url=http%3A%2F%2Fx.kwcdn.kuwo.cn%2Fimg.jpg", m["cover"])
	assert.Equal(t, "faixa", m["name"])
}
