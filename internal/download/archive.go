package download

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"
)

// ExtractPrefix writes every file entry of a RAR archive whose name starts
// with prefix into dest, with the prefix removed. It returns the number of
// files written.
func ExtractPrefix(archive []byte, prefix string, dest string) (int, error) {
	rr, err := rardecode.NewReader(bytes.NewReader(archive))
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}

	written := 0
	for {
		hdr, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("read archive: %w", err)
		}
		if hdr.IsDir {
			continue
		}

		rel, ok := relativeName(hdr.Name, prefix)
		if !ok {
			continue
		}
		target, err := safeJoin(dest, rel)
		if err != nil {
			return written, err
		}
		if err := writeEntry(target, rr); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}

// relativeName strips prefix from an archive entry name
func relativeName(name, prefix string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(name, prefix)
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", false
	}
	return rel, true
}

// safeJoin joins rel onto dest and rejects names that escape dest
func safeJoin(dest, rel string) (string, error) {
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", fmt.Errorf("archive entry %q escapes destination", rel)
		}
	}
	clean := path.Clean(strings.TrimLeft(rel, "/"))
	if clean == "." {
		return "", fmt.Errorf("archive entry %q has no file name", rel)
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

func writeEntry(target string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", target, closeErr)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
