package fsx

import (
	"errors"
	"os"
	"path/filepath"
)

// WriteFileAtomic 在 dir 下原子写入 name（同目录临时文件 + rename），目标存在时覆盖。
func WriteFileAtomic(dir, name string, data []byte) error {
	if name == "" || filepath.Base(name) != name {
		return errors.New("fsx: 非法文件名")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return err
	}
	ok = true
	return nil
}

// WriteFile 是 WriteFileAtomic 的路径形式。
func WriteFile(path string, data []byte) error {
	return WriteFileAtomic(filepath.Dir(path), filepath.Base(path), data)
}
