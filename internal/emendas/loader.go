package emendas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/painel-emendas/internal/sheet"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Load reads and normalizes the spreadsheet at path.
func Load(path string, opt sheet.Options) ([]Record, error) {
	tbl, err := sheet.Read(path, opt)
	if err != nil {
		return nil, err
	}
	recs, err := NormalizeWith(tbl, NumberFormat{Decimal: opt.DecimalSeparator, Thousands: opt.ThousandsSeparator})
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", filepath.Base(path), err)
	}
	return recs, nil
}

// Snapshot is one immutable load of the source. Records must not be modified;
// a snapshot may be shared by any number of concurrent readers.
type Snapshot struct {
	ID       string
	Source   string
	ModTime  time.Time
	LoadedAt time.Time
	Records  []Record
	Err      error
}

// Failed reports whether the load behind this snapshot failed.
func (s *Snapshot) Failed() bool { return s.Err != nil }

// Message is the text shown to users when the load failed, or "".
func (s *Snapshot) Message() string {
	if s.Err == nil {
		return ""
	}
	var missing *MissingColumnsError
	var bad *ValueError
	switch {
	case errors.Is(s.Err, fs.ErrNotExist):
		return fmt.Sprintf("Erro ao carregar dados: arquivo %s não encontrado", filepath.Base(s.Source))
	case errors.As(s.Err, &missing):
		return fmt.Sprintf("Erro ao carregar dados: colunas ausentes na planilha (%s)", strings.Join(missing.Missing, ", "))
	case errors.As(s.Err, &bad):
		return fmt.Sprintf("Erro ao carregar dados: linha %d com VALOR inválido (%q)", bad.Row, bad.Raw)
	default:
		return "Erro ao carregar dados: " + s.Err.Error()
	}
}

type cacheKey struct {
	modTime int64
	size    int64
}

// Cache memoizes Load for one source file. The file is read again only when its
// modification time or size changes, or after Invalidate.
type Cache struct {
	path string
	opt  sheet.Options
	log  zerolog.Logger

	mu    sync.Mutex
	key   cacheKey
	valid bool
	snap  *Snapshot
}

// NewCache returns a cache for the given source.
func NewCache(path string, opt sheet.Options, log zerolog.Logger) *Cache {
	return &Cache{path: path, opt: opt, log: log}
}

// Path returns the source path.
func (c *Cache) Path() string { return c.path }

// Get returns the current snapshot, never nil. A failed load yields a snapshot
// with no records and Err set; callers render it as an empty dashboard.
func (c *Cache) Get() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, statErr := os.Stat(c.path)
	var key cacheKey
	if statErr == nil {
		key = cacheKey{modTime: info.ModTime().UnixNano(), size: info.Size()}
	}
	if c.valid && c.snap != nil && key == c.key {
		return c.snap
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		Source:   c.path,
		LoadedAt: time.Now(),
	}
	start := time.Now()
	if statErr != nil {
		snap.Err = statErr
	} else {
		snap.ModTime = info.ModTime()
		snap.Records, snap.Err = Load(c.path, c.opt)
	}
	if snap.Err != nil {
		snap.Records = nil
		c.log.Error().Err(snap.Err).Str("source", c.path).Msg("load failed")
	} else {
		c.log.Info().
			Str("source", c.path).
			Str("snapshot", snap.ID).
			Int("records", len(snap.Records)).
			Dur("took", time.Since(start)).
			Msg("source loaded")
	}
	c.key = key
	c.valid = true
	c.snap = snap
	return snap
}

// Invalidate forces the next Get to read the source again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

