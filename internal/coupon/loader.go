package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading coupon catalogue files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a coupon catalogue file and returns a Store. The file contains
// one JSON coupon definition per line; a .gz suffix means gzip-compressed.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Store, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	store, err := readCoupons(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read coupon file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", store.Size()).
		Msg("coupon file loaded successfully")

	return store, nil
}

// readCoupons parses JSON-lines coupon definitions from r, transparently
// unwrapping gzip when the source name carries a .gz suffix.
func readCoupons(ctx context.Context, r io.Reader, name string) (Store, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	store := NewMapStore(1024).(*mapStore)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineCount := 0
	for scanner.Scan() {
		// Check context cancellation periodically
		if lineCount%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var c Coupon
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("invalid coupon definition in %s: %w", name, err)
		}
		if c.Code == "" {
			return nil, fmt.Errorf("coupon definition without code in %s", name)
		}

		store.Add(&c)
		lineCount++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading coupon file %s: %w", name, err)
	}

	return store, nil
}
