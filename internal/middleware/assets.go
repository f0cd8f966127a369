package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AssetsWithCache serves dir under prefix and applies Cache-Control, Vary, and ETag handling.
func AssetsWithCache(dir, prefix string) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")
	etags := collectETags(dir)
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")
		if et := etags[strings.TrimPrefix(r.URL.Path, prefix)]; et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		fs.ServeHTTP(w, r)
	})
}

// ImagesWithFallback serves product images from dir under prefix. A missing
// image answers with the placeholder file so broken references still render.
func ImagesWithFallback(dir, prefix, placeholder string) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")
	etags := collectETags(dir)
	placeholderName := strings.TrimPrefix(placeholder, prefix)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + strings.TrimPrefix(r.URL.Path, prefix))
		full := filepath.Join(dir, filepath.FromSlash(name))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			name = path.Clean("/" + placeholderName)
			full = filepath.Join(dir, filepath.FromSlash(name))
			if _, err := os.Stat(full); err != nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("X-Image-Fallback", "placeholder")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			if et := etags[name]; et != "" {
				w.Header().Set("ETag", et)
				if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
		http.ServeFile(w, r, full)
	})
}

func collectETags(dir string) map[string]string {
	etags := map[string]string{}
	_ = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		et, err := fileETag(p)
		if err != nil {
			return nil
		}
		if rel, err := filepath.Rel(dir, p); err == nil {
			etags["/"+filepath.ToSlash(rel)] = et
		}
		return nil
	})
	return etags
}

func fileETag(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
