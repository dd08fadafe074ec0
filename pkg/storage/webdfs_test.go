package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebDFSGetFileURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/fs/get", r.URL.Path)
		require.Equal(t, "token-teste", r.Header.Get("Authorization"))

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		if body["path"] == "/music-cache/netease/123_320k.mp3" {
			w.Write([]byte(`{"code":200,"data":{"raw_url":"https://cdn.example.com/123.mp3"}}`))
			return
		}
		w.Write([]byte(`{"code":404,"message":"object not found"}`))
	}))
	defer srv.Close()

	store := NewWebDFSStore(srv.URL, "token-teste")

	// Hit
	url, err := store.GetFileURL(context.Background(), "/music-cache/netease/123_320k.mp3")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/123.mp3", url)

	// Ausência (code != 200)
	_, err = store.GetFileURL(context.Background(), "/music-cache/netease/999_320k.mp3")
	assert.True(t, errors.Is(err, ErrNotCached))
}

func TestWebDFSGetFileURLErroDeRede(t *testing.T) {
	store := NewWebDFSStore("http://127.0.0.1:1", "t")

	// Erro da própria checagem também é tratado como ausência
	_, err := store.GetFileURL(context.Background(), "/qualquer")
	assert.True(t, errors.Is(err, ErrNotCached))
}

func TestWebDFSUpload(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/fs/put", r.URL.Path)
		gotPath = r.Header.Get("File-Path")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	store := NewWebDFSStore(srv.URL, "token-teste")
	err := store.Upload(context.Background(), "/music-cache/netease/123_320k.mp3", []byte("audio"), "audio/mpeg")
	require.NoError(t, err)

	assert.Contains(t, gotPath, "123_320k.mp3")
	assert.Equal(t, "audio/mpeg", gotType)
	assert.Equal(t, "audio", string(gotBody))
}
