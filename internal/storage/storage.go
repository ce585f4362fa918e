package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store 上传文件的内容存储
type Store interface {
	// Save 写入 dir/name，返回对外访问的相对路径
	Save(ctx context.Context, dir, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
	// Open 按 Save 返回的相对路径读取
	Open(ctx context.Context, relPath string) (io.ReadSeekCloser, error)
}

// LocalStore 本地磁盘存储
type LocalStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore root 为磁盘根目录，urlPrefix 为对外路径前缀（如 /uploads）
func NewLocalStore(root, urlPrefix string) *LocalStore {
	return &LocalStore{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Root 磁盘根目录
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	target := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	full := filepath.Join(target, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return path.Join(s.urlPrefix, dir, name), nil
}

func (s *LocalStore) Delete(_ context.Context, relPath string) error {
	if err := os.Remove(s.resolve(relPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, relPath string) (io.ReadSeekCloser, error) {
	f, err := os.Open(s.resolve(relPath))
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, &os.PathError{Op: "open", Path: relPath, Err: os.ErrNotExist}
	}
	return f, nil
}

// resolve 对外路径映射到 root 下的磁盘路径，不会越出 root
func (s *LocalStore) resolve(relPath string) string {
	rel := strings.TrimPrefix(path.Clean("/"+relPath), s.urlPrefix)
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+rel)))
}

// ctxReader 请求取消后停止写盘
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
