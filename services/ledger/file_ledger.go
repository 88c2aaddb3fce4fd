package ledger

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/logger"
)

// FileLedger is a HashLedger persisted as an append-only text file with one
// hex digest per line. A missing or unreadable file loads as an empty
// ledger, never as an error.
type FileLedger struct {
	path   string
	log    logger.Logger
	mu     sync.Mutex
	hashes map[string]struct{}
}

func NewFileLedger(path string, log logger.Logger) interfaces.HashLedger {
	l := &FileLedger{
		path:   path,
		log:    log,
		hashes: make(map[string]struct{}),
	}
	l.load()
	return l
}

func (l *FileLedger) load() {
	file, err := os.Open(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warnf("Failed to load processed hashes from %s: %v", l.path, err)
		}
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		hash := strings.TrimSpace(scanner.Text())
		if hash != "" {
			l.hashes[hash] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		l.log.Warnf("Failed to read processed hashes from %s: %v", l.path, err)
		return
	}

	l.log.Infof("Loaded %d processed file hashes", len(l.hashes))
}

func (l *FileLedger) Contains(hash string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.hashes[hash]
	return ok
}

// Record appends the hash to the ledger file and the in-memory set.
// Recording an already-present hash is harmless.
func (l *FileLedger) Record(hash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create ledger directory")
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open ledger file")
	}
	defer file.Close()

	if _, err := file.WriteString(hash + "\n"); err != nil {
		return errors.Wrap(err, "failed to append to ledger file")
	}

	l.hashes[hash] = struct{}{}
	return nil
}

func (l *FileLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hashes)
}
