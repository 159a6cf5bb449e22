package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// WriteJson writes a pretty-printed JSON object to a file creating parent
// directories if required. The write is atomic: the object lands in a
// temporary file next to the target which is then renamed over it, so a
// crash never leaves a half-written file behind.
func WriteJson(file string, obj interface{}) error {
	fileDir, fileName, err := prepareFileDir(file)
	if err != nil {
		return err
	}

	bs, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tempFile, err := os.CreateTemp(fileDir, ".*"+fileName)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tempFileName := tempFile.Name()

	if err = os.Chmod(tempFileName, 0600); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFileName)
		return fmt.Errorf("set temp file permissions: %w", err)
	}

	if _, err = tempFile.Write(bs); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFileName)
		return fmt.Errorf("write: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tempFileName, err)
	}

	defer func() {
		if _, statErr := os.Stat(tempFileName); statErr == nil {
			if rmErr := os.Remove(tempFileName); rmErr != nil {
				log.Warnf("failed to remove temp file %s: %v", tempFileName, rmErr)
			}
		}
	}()

	if err = os.Rename(tempFileName, file); err != nil {
		return fmt.Errorf("move %s to %s: %w", tempFileName, file, err)
	}

	return nil
}

// ReadJson reads a JSON file into res and returns res for convenience
func ReadJson(file string, res interface{}) (interface{}, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("failed to close file %s: %v", file, err)
		}
	}()

	bs, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(bs, &res)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// RemoveJson removes the specified JSON file if it exists
func RemoveJson(file string) error {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.Remove(file)
}

func prepareFileDir(file string) (string, string, error) {
	fileDir := filepath.Dir(file)
	fileName := filepath.Base(file)
	if fileDir != "" && fileDir != "." {
		if err := os.MkdirAll(fileDir, 0750); err != nil {
			return "", "", fmt.Errorf("create dir %s: %w", fileDir, err)
		}
	}
	return fileDir, fileName, nil
}
