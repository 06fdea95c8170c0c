// Package intake locates lease documents for the pipeline: PDFs sitting
// in a local directory, or PDFs pulled from an FTP dropbox into a local
// spool directory.
package intake

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lease-abstract-cli/internal/config"
)

// ListLocal returns the PDF files directly inside dir, sorted by name.
func ListLocal(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "intake: read dir %s", dir)
	}

	var docs []string
	for _, e := range entries {
		if e.IsDir() || !isPDF(e.Name()) {
			continue
		}
		docs = append(docs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(docs)
	return docs, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// FTPDropbox pulls lease documents from an FTP server into a spool
// directory. Downloads are paced by a token bucket so batch intake does
// not hammer a shared dropbox.
type FTPDropbox struct {
	timeout  time.Duration
	spoolDir string
	limiter  *rate.Limiter
}

// NewFTPDropbox creates a dropbox client from intake config, applying
// defaults for unset fields.
func NewFTPDropbox(cfg config.IntakeConfig) *FTPDropbox {
	timeout := time.Duration(cfg.FTPTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 2
	}
	spool := cfg.SpoolDir
	if spool == "" {
		spool = os.TempDir()
	}
	return &FTPDropbox{
		timeout:  timeout,
		spoolDir: spool,
		limiter:  rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// ftpTarget is a parsed FTP URL: dial address, remote path, credentials.
type ftpTarget struct {
	host string
	path string
	user string
	pass string
}

// parseFTPURL extracts the dial address, path, and credentials from an
// FTP URL. Missing ports default to 21 and missing credentials to
// anonymous login.
func parseFTPURL(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "intake: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return ftpTarget{}, eris.Errorf("intake: expected ftp scheme, got %q", u.Scheme)
	}

	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}
	if u.Path == "" {
		return ftpTarget{}, eris.New("intake: empty path in ftp url")
	}

	t := ftpTarget{host: host, path: u.Path, user: "anonymous", pass: "anonymous@"}
	if u.User != nil {
		t.user = u.User.Username()
		t.pass, _ = u.User.Password()
	}
	return t, nil
}

func (d *FTPDropbox) connect(ctx context.Context, target ftpTarget) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(target.host, ftp.DialWithTimeout(d.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "intake: ftp dial")
	}
	if err := conn.Login(target.user, target.pass); err != nil {
		conn.Quit() //nolint:errcheck
		return nil, eris.Wrap(err, "intake: ftp login")
	}
	return conn, nil
}

// ftpConnReader ties an FTP response to its connection so closing the
// reader also releases the connection.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "intake: close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "intake: quit ftp connection")
	}
	return nil
}

// Download opens a single document on the dropbox. The caller must close
// the returned reader to release the FTP connection.
func (d *FTPDropbox) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	target, err := parseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "intake: rate wait")
	}

	zap.L().Debug("intake: connecting", zap.String("host", target.host), zap.String("path", target.path))

	conn, err := d.connect(ctx, target)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Retr(target.path)
	if err != nil {
		conn.Quit() //nolint:errcheck
		return nil, eris.Wrapf(err, "intake: ftp retrieve %s", target.path)
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}

// Pull downloads a single document into the spool directory and returns
// its local path.
func (d *FTPDropbox) Pull(ctx context.Context, ftpURL string) (string, error) {
	target, err := parseFTPURL(ftpURL)
	if err != nil {
		return "", err
	}

	rc, err := d.Download(ctx, ftpURL)
	if err != nil {
		return "", err
	}
	defer rc.Close() //nolint:errcheck

	if err := os.MkdirAll(d.spoolDir, 0o755); err != nil {
		return "", eris.Wrap(err, "intake: create spool dir")
	}

	local := filepath.Join(d.spoolDir, path.Base(target.path))
	f, err := os.Create(local)
	if err != nil {
		return "", eris.Wrapf(err, "intake: create %s", local)
	}
	defer f.Close() //nolint:errcheck

	n, err := io.Copy(f, rc)
	if err != nil {
		return "", eris.Wrapf(err, "intake: write %s", local)
	}

	zap.L().Info("intake: pulled document",
		zap.String("document", path.Base(target.path)),
		zap.Int64("bytes", n),
	)
	return local, nil
}

// Fetch lists the dropbox directory and pulls every PDF into the spool
// directory, returning local paths in listing order.
func (d *FTPDropbox) Fetch(ctx context.Context, dirURL string) ([]string, error) {
	target, err := parseFTPURL(dirURL)
	if err != nil {
		return nil, err
	}

	conn, err := d.connect(ctx, target)
	if err != nil {
		return nil, err
	}
	entries, err := conn.List(target.path)
	quitErr := conn.Quit()
	if err != nil {
		return nil, eris.Wrapf(err, "intake: ftp list %s", target.path)
	}
	if quitErr != nil {
		zap.L().Warn("intake: quit after list failed", zap.Error(quitErr))
	}

	var locals []string
	for _, entry := range entries {
		if entry.Type != ftp.EntryTypeFile || !isPDF(entry.Name) {
			continue
		}
		local, err := d.Pull(ctx, joinFTPURL(dirURL, entry.Name))
		if err != nil {
			return nil, err
		}
		locals = append(locals, local)
	}

	zap.L().Info("intake: dropbox fetched",
		zap.String("host", target.host),
		zap.Int("documents", len(locals)),
	)
	return locals, nil
}

func joinFTPURL(dirURL, name string) string {
	return strings.TrimRight(dirURL, "/") + "/" + name
}
