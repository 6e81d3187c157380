package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/xmemsim/server/memory"
)

// FileSuffix 转储文件后缀
const FileSuffix = ".json.sz"

// Write 把快照编码为JSON并以snappy帧格式压缩写入w
func Write(w io.Writer, snap *memory.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	sw := snappy.NewBufferedWriter(w)
	enc := json.NewEncoder(sw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		sw.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	return errors.Wrap(sw.Close(), "flush snapshot")
}

// Read 读取Write写出的快照
func Read(r io.Reader) (*memory.Snapshot, error) {
	snap := &memory.Snapshot{}
	if err := json.NewDecoder(snappy.NewReader(r)).Decode(snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return snap, nil
}

// WriteFile 把快照写入dir/memdump-<unix>.json.sz，返回文件路径
func WriteFile(dir string, snap *memory.Snapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create dump dir %s", dir)
	}
	path := filepath.Join(dir, fmt.Sprintf("memdump-%d%s", now.Unix(), FileSuffix))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create dump file %s", path)
	}
	if err := Write(f, snap); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close dump file %s", path)
	}
	return path, nil
}

// ReadFile 读取转储文件
func ReadFile(path string) (*memory.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dump file %s", path)
	}
	defer f.Close()
	return Read(f)
}
