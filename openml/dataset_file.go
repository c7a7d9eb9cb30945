package openml

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

// DownloadDataset streams the data file of dsd into w and returns the hex MD5 of the
// bytes written.
func (c *Client) DownloadDataset(ctx context.Context, dsd *model.DatasetDescription, w io.Writer) (string, error) {
	const op = "dataset download"
	if dsd == nil || strings.TrimSpace(xmlmap.StringValue(dsd.URL)) == "" {
		return "", usage(op, "the description has no url")
	}
	hash := md5.New()
	if _, err := c.conn.Download(ctx, *dsd.URL, io.MultiWriter(w, hash)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// DatasetFile returns the path of a local copy of the data file of dsd, downloading
// it into the cache directory when no verified copy exists. A copy whose MD5 differs
// from the description's checksum is never returned.
func (c *Client) DatasetFile(ctx context.Context, dsd *model.DatasetDescription) (string, error) {
	const op = "dataset file"
	if dsd == nil || dsd.ID == nil {
		return "", usage(op, "the description has no id")
	}
	if strings.TrimSpace(xmlmap.StringValue(dsd.URL)) == "" {
		return "", usage(op, "the description has no url")
	}
	checksum := xmlmap.StringValue(dsd.MD5Checksum)

	dir := filepath.Join(c.cacheRoot(), "datasets", itoa(*dsd.ID))
	target := filepath.Join(dir, fileName(dsd))

	if sum, err := fileMD5(target); err == nil && (checksum == "" || sum == checksum) {
		c.logger.Debugw("dataset cache hit", "id", *dsd.ID, "path", target)
		return target, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &connector.IOError{Op: "create", Target: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", &connector.IOError{Op: "create", Target: dir, Err: err}
	}
	defer os.Remove(tmp.Name())

	sum, err := c.DownloadDataset(ctx, dsd, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = &connector.IOError{Op: "write", Target: tmp.Name(), Err: closeErr}
	}
	if err != nil {
		return "", err
	}
	if checksum != "" && sum != checksum {
		return "", &connector.IOError{
			Op:     "verify",
			Target: *dsd.URL,
			Err:    errors.Errorf("md5 %s does not match checksum %s", sum, checksum),
		}
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", &connector.IOError{Op: "store", Target: target, Err: err}
	}
	return target, nil
}

func (c *Client) cacheRoot() string {
	if c.cacheDir != "" {
		return c.cacheDir
	}
	return filepath.Join(os.TempDir(), "openml-cache")
}

func fileName(dsd *model.DatasetDescription) string {
	if u, err := url.Parse(xmlmap.StringValue(dsd.URL)); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	format := strings.ToLower(dsd.Format)
	if format == "" {
		format = "arff"
	}
	return "dataset." + format
}

// FileMD5 returns the hex MD5 of the file at p.
func FileMD5(p string) (string, error) {
	sum, err := fileMD5(p)
	if err != nil {
		return "", &connector.IOError{Op: "hash", Target: p, Err: err}
	}
	return sum, nil
}

func fileMD5(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hash := md5.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// DataCSV streams the data file with the given file id, converted to CSV by the
// server, into w. name is the dataset name.
func (c *Client) DataCSV(ctx context.Context, fileID int, name string, w io.Writer) (int64, error) {
	const op = "data csv"
	if err := checkID(op, "file id", fileID); err != nil {
		return 0, err
	}
	if strings.TrimSpace(name) == "" {
		return 0, usage(op, "a dataset name is required")
	}
	target := c.conn.ServerURL() + "data/get_csv/" + itoa(fileID) + "/" + url.PathEscape(name) + ".csv"
	return c.conn.Download(ctx, target, w)
}
