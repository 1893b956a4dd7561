package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid19-age-ratio/internal/config"
	"github.com/couchcryptid/covid19-age-ratio/internal/prefecture"
)

func TestRun_UnknownPrefectureWritesNothing(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cases.csv")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := run(context.Background(), &config.Config{}, logger, "hokkaido", file)
	require.ErrorIs(t, err, prefecture.ErrUnknownPrefecture)

	_, statErr := os.Stat(file)
	assert.True(t, os.IsNotExist(statErr))
}

const page = `<table><tbody>
<tr><th>No</th><th>判明日</th><th>年代</th><th>性別</th><th>居住地</th><th>職業</th><th>備考</th></tr>
<tr><td>15</td><td>1月2日(土)</td><td>40歳代</td><td>男性</td><td>秋田市</td><td>会社員</td><td></td></tr>
<tr><td>14</td><td>1月1日(金)</td><td>20歳代</td><td>女性</td><td>大館市</td><td>学生</td><td></td></tr>
<tr><td>13</td><td>12月28日(月)</td><td>60歳代</td><td>男性</td><td>能代市</td><td>無職</td><td></td></tr>
</tbody></table>`

func TestRun_AppendsFromFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	file := filepath.Join(t.TempDir(), "akita.csv")
	cfg := &config.Config{FetchTimeout: 5 * time.Second, FetchURL: srv.URL}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, run(context.Background(), cfg, logger, "akita", file))
	require.NoError(t, run(context.Background(), cfg, logger, "akita", file))

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "No,感染判明日,年齢\n"+
		"15,2021-01-02,40歳代\n"+
		"14,2021-01-01,20歳代\n"+
		"13,2020-12-28,60歳代\n", string(b))
}

func TestRun_FetchErrorExitsWithoutWriting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	file := filepath.Join(t.TempDir(), "akita.csv")
	cfg := &config.Config{FetchTimeout: 5 * time.Second, FetchURL: srv.URL}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.Error(t, run(context.Background(), cfg, logger, "akita", file))

	_, statErr := os.Stat(file)
	assert.True(t, os.IsNotExist(statErr))
}
