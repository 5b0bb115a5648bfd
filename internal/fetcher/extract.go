package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ETagFile stores the ETag of the last downloaded extract inside the data dir.
const ETagFile = ".etag"

// ExtractResult describes one FetchExtract call.
type ExtractResult struct {
	Changed bool     // false when the server reported the extract unchanged
	ETag    string   // ETag of the extract now in the data dir
	Bytes   int64    // size of the downloaded archive
	Files   []string // extracted CSV paths
}

// FetchExtract downloads the extract archive at url and unpacks its CSV files
// into dataDir. When force is false and the server answers 304 Not Modified to
// the stored ETag, nothing is downloaded. The archive is staged in tempDir.
func FetchExtract(ctx context.Context, f Fetcher, url, dataDir, tempDir string, force bool) (*ExtractResult, error) {
	log := zap.L().With(zap.String("component", "fetcher.extract"))
	if url == "" {
		return nil, eris.New("fetcher: download url is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "fetcher: create data dir")
	}

	etagPath := filepath.Join(dataDir, ETagFile)
	var etag string
	if !force {
		if b, err := os.ReadFile(etagPath); err == nil {
			etag = strings.TrimSpace(string(b))
		}
	}

	body, newETag, changed, err := f.DownloadIfChanged(ctx, url, etag)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: download extract")
	}
	if !changed {
		log.Info("extract unchanged, skipping download", zap.String("etag", etag))
		return &ExtractResult{ETag: etag}, nil
	}
	defer body.Close() //nolint:errcheck

	tmp, err := os.CreateTemp(tempDir, "bce-extract-*.zip")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create temp archive")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: write temp archive")
	}

	files, err := ExtractZIP(tmp.Name(), dataDir, CSVOnly)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: extract archive")
	}
	if len(files) == 0 {
		return nil, eris.New("fetcher: archive contains no csv files")
	}

	if newETag != "" {
		if err := os.WriteFile(etagPath, []byte(newETag+"\n"), 0o644); err != nil {
			return nil, eris.Wrap(err, "fetcher: write etag")
		}
	}

	log.Info("extract downloaded",
		zap.Int64("bytes", n),
		zap.Int("files", len(files)),
		zap.String("data_dir", dataDir),
	)
	return &ExtractResult{Changed: true, ETag: newETag, Bytes: n, Files: files}, nil
}
