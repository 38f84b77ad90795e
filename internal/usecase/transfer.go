package usecase

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"ragstore/internal/adapter/store"
	"ragstore/internal/domain"
)

// exportHeader is the column set written by Export. Importing an exported
// file with contentColumn "content" round-trips the document contents.
var exportHeader = []string{"id", "collection", "content", "metadata", "created_at"}

// Transfer moves documents between the store and CSV files.
//
// Import is all-or-nothing per call: the whole file is parsed and validated
// before any embedding happens, and the insert is a single transaction. A
// file with a malformed row, a missing column or an empty content cell adds
// nothing.
type Transfer struct {
	docs  *Documents
	store *store.BoltStore
}

func NewTransfer(docs *Documents, st *store.BoltStore) *Transfer {
	return &Transfer{docs: docs, store: st}
}

// Import reads a CSV file with a header row and adds one document per
// record. contentColumn names the column holding document text;
// metadataColumns name the columns copied into each document's metadata.
// Returns the number of documents added.
func (t *Transfer) Import(path, collectionName, contentColumn string, metadataColumns []string, progress func(done, total int)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w (%v)", path, domain.ErrTransfer, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header of %s: %w (%v)", path, domain.ErrTransfer, err)
	}

	contentIdx := -1
	for i, col := range header {
		if col == contentColumn {
			contentIdx = i
			break
		}
	}
	if contentIdx < 0 {
		return 0, fmt.Errorf("content column %q not found in %s: %w", contentColumn, path, domain.ErrTransfer)
	}

	metaIdx := make(map[string]int, len(metadataColumns))
	for _, name := range metadataColumns {
		found := -1
		for i, col := range header {
			if col == name {
				found = i
				break
			}
		}
		if found < 0 {
			return 0, fmt.Errorf("metadata column %q not found in %s: %w", name, path, domain.ErrTransfer)
		}
		metaIdx[name] = found
	}

	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w (%v)", path, domain.ErrTransfer, err)
	}

	contents := make([]string, 0, len(records))
	metadata := make([]map[string]string, 0, len(records))
	for i, record := range records {
		content := record[contentIdx]
		if content == "" {
			return 0, fmt.Errorf("row %d of %s: empty content: %w", i+1, path, domain.ErrTransfer)
		}
		contents = append(contents, content)

		var meta map[string]string
		if len(metadataColumns) > 0 {
			meta = make(map[string]string, len(metadataColumns))
			for name, idx := range metaIdx {
				meta[name] = record[idx]
			}
		}
		metadata = append(metadata, meta)
	}
	if len(contents) == 0 {
		return 0, nil
	}

	var onBatch func(done int)
	if progress != nil {
		total := len(contents)
		onBatch = func(done int) { progress(done, total) }
	}

	if _, err := t.docs.AddBatch(contents, collectionName, metadata, onBatch); err != nil {
		return 0, err
	}
	return len(contents), nil
}

// ImportGlob imports every file matching a doublestar pattern, each file as
// its own all-or-nothing batch. A pattern matching nothing is a transfer
// error.
func (t *Transfer) ImportGlob(pattern, collectionName, contentColumn string, metadataColumns []string, progress func(path string, done, total int)) (int, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return 0, fmt.Errorf("bad pattern %q: %w (%v)", pattern, domain.ErrTransfer, err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no files match %q: %w", pattern, domain.ErrTransfer)
	}

	total := 0
	for _, path := range paths {
		var onRecord func(done, total int)
		if progress != nil {
			p := path
			onRecord = func(done, fileTotal int) { progress(p, done, fileTotal) }
		}
		n, err := t.Import(path, collectionName, contentColumn, metadataColumns, onRecord)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Export writes all documents of a collection to a CSV file in insertion
// order and returns the number written.
func (t *Transfer) Export(path, collectionName string) (int, error) {
	docs, err := t.store.ListDocuments(collectionName, -1, 0)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w (%v)", path, domain.ErrTransfer, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write %s: %w (%v)", path, domain.ErrTransfer, err)
	}

	for _, doc := range docs {
		metadata := ""
		if len(doc.Metadata) > 0 {
			data, err := json.Marshal(doc.Metadata)
			if err != nil {
				return 0, fmt.Errorf("encode metadata of document %d: %w (%v)", doc.ID, domain.ErrTransfer, err)
			}
			metadata = string(data)
		}
		record := []string{
			strconv.FormatUint(doc.ID, 10),
			doc.CollectionName,
			doc.Content,
			metadata,
			doc.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("write %s: %w (%v)", path, domain.ErrTransfer, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush %s: %w (%v)", path, domain.ErrTransfer, err)
	}
	return len(docs), nil
}
