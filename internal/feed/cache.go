package feed

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheEnvVar         = "PAPERDECK_CACHE_DIR"
	cacheSubdir         = "paperdeck/pdfs"
	cacheTTL            = 24 * time.Hour
	partialSuffix       = ".part"
	metaSuffix          = ".meta"
	defaultFetchTimeout = 90 * time.Second
)

// docCache stores downloaded PDFs on disk and revalidates them with
// conditional and range requests so interrupted downloads resume.
type docCache struct {
	dir    string
	client *http.Client
}

type docCacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

func newDocCache(client *http.Client) (*docCache, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "paperdeck-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &docCache{dir: dir, client: client}, nil
}

// Fetch returns a local path for url, downloading it unless a fresh copy is
// already cached under key.
func (c *docCache) Fetch(ctx context.Context, url, key string) (string, error) {
	docPath, metaPath, partialPath := c.pathsFor(cacheKey(url, key))

	if info, err := os.Stat(docPath); err == nil && time.Since(info.ModTime()) < cacheTTL && info.Size() > 0 {
		return docPath, nil
	}

	meta, _ := readMeta(metaPath)
	info, _ := os.Stat(docPath)
	path, err := c.download(ctx, url, docPath, metaPath, partialPath, meta, info)
	if err == nil {
		return path, nil
	}
	// A stale copy beats no copy when the refresh fails.
	if info != nil && info.Size() > 0 {
		return docPath, nil
	}
	return "", err
}

func (c *docCache) download(ctx context.Context, url, docPath, metaPath, partialPath string, meta docCacheMeta, current os.FileInfo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	var partialSize int64
	if info, err := os.Stat(partialPath); err == nil && info.Size() > 0 {
		partialSize = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", partialSize))
		if meta.ETag != "" {
			req.Header.Set("If-Range", meta.ETag)
		} else if meta.LastModified != "" {
			req.Header.Set("If-Range", meta.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			meta.CachedAt = time.Now().UTC()
			writeMeta(metaPath, meta)
			return docPath, nil
		}
		return c.download(ctx, url, docPath, metaPath, partialPath, docCacheMeta{}, nil)
	case http.StatusOK:
		return c.saveBody(resp, docPath, metaPath, partialPath, false)
	case http.StatusPartialContent:
		return c.saveBody(resp, docPath, metaPath, partialPath, partialSize > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pdf download failed: %s (%s)", resp.Status, string(body))
	}
}

func (c *docCache) saveBody(resp *http.Response, docPath, metaPath, partialPath string, appendExisting bool) (string, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(partialPath, docPath); err != nil {
		return "", err
	}

	meta := docCacheMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(docPath); err == nil {
		meta.Size = info.Size()
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}
	return docPath, nil
}

func (c *docCache) pathsFor(key string) (string, string, string) {
	return filepath.Join(c.dir, key+".pdf"), filepath.Join(c.dir, key+metaSuffix), filepath.Join(c.dir, key+partialSuffix)
}

func cacheKey(url, key string) string {
	if sanitized := sanitizeKey(key); sanitized != "" {
		return sanitized
	}
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

func sanitizeKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, ":", "-")
	value = strings.ReplaceAll(value, "..", "-")
	return value
}

func readMeta(path string) (docCacheMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return docCacheMeta{}, err
	}
	var meta docCacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return docCacheMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta docCacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
