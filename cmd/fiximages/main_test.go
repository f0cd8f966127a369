package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/media"
)

type staticLister struct {
	list backend.List[backend.Product]
	err  error
}

func (s staticLister) ListProducts(context.Context) (backend.List[backend.Product], error) {
	return s.list, s.err
}

func TestBuildReportListsChangedPaths(t *testing.T) {
	t.Parallel()

	lister := staticLister{list: backend.List[backend.Product]{Items: []backend.Product{
		{ID: "1", Name: "Brush", Image: "/media/products/brush.png"},
		{ID: "2", Name: "Tote", Image: "/images/PD02.jpg"},
		{ID: "3", Name: "Cup", ImageURL: "cup.jpg"},
		{ID: "4", Name: "Bare"},
		{ID: "5", Name: "Remote", Image: "https://cdn.example.com/x.png"},
	}}}

	rep, err := buildReport(context.Background(), lister, media.DefaultResolver)
	require.NoError(t, err)
	require.Equal(t, 5, rep.Scanned)
	require.Equal(t, 1, rep.Skipped)
	require.Equal(t, []Change{
		{ID: "1", Name: "Brush", OldPath: "/media/products/brush.png", NewPath: "/images/brush.png"},
		{ID: "3", Name: "Cup", OldPath: "cup.jpg", NewPath: "/images/cup.jpg"},
	}, rep.Changes)
}

func TestBuildReportPropagatesErrors(t *testing.T) {
	t.Parallel()

	_, err := buildReport(context.Background(), staticLister{err: errors.New("boom")}, media.DefaultResolver)
	require.ErrorContains(t, err, "list products")
}

func TestWriteReportText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, Report{Scanned: 3, Changes: []Change{{ID: "1", OldPath: "/media/a.png", NewPath: "/images/a.png"}}}, false))
	require.Equal(t, "product 1: /media/a.png -> /images/a.png\n1 of 3 products need an image path update\n", buf.String())
}

func TestReportCommandAgainstBackend(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/", r.URL.Path)
		_, _ = io.WriteString(w, `{"products":[{"id":7,"name":"Straw","image":"/media/products/straw.jpg"}]}`)
	}))
	t.Cleanup(api.Close)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"report", "--json", "--api-url", api.URL, "--env-file", ""})
	t.Cleanup(func() { asJSON, apiURL, envFile = false, "", ".env" })

	require.NoError(t, cmd.Execute())

	var rep Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	require.Equal(t, 1, rep.Scanned)
	require.Len(t, rep.Changes, 1)
	require.Equal(t, "/images/straw.jpg", rep.Changes[0].NewPath)
}
