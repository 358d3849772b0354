package batch

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchiveName expands an archive name format.
//
// Placeholders:
//
//	{short}     - first 8 hex characters of a random UUID
//	{uuid}      - a full random UUID
//	{timestamp} - current time as YYYYMMDD_HHMMSS
func ArchiveName(format string) string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	r := strings.NewReplacer(
		"{short}", hex[:8],
		"{uuid}", id.String(),
		"{timestamp}", time.Now().Format("20060102_150405"),
	)
	return r.Replace(format)
}

// EntryNames returns the archive name of each entry. Names that collide,
// e.g. "a.xlsx" and "a.xlsm" both becoming "a.xml", get a numeric suffix
// before the extension: "a_2.xml".
func (o *Output) EntryNames() []string {
	names := make([]string, len(o.Entries))
	used := make(map[string]bool, len(o.Entries))
	for i, e := range o.Entries {
		name := e.OutputName
		if used[name] {
			ext := filepath.Ext(name)
			stem := strings.TrimSuffix(name, ext)
			for n := 2; used[name]; n++ {
				name = fmt.Sprintf("%s_%d%s", stem, n, ext)
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// WriteZip writes every entry to w as a deflated ZIP archive, in input order.
func (o *Output) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	for i, name := range o.EntryNames() {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := f.Write(o.Entries[i].Output); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// ZipBytes returns the archive as a byte slice.
func (o *Output) ZipBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.WriteZip(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
