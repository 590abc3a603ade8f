package tokens

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when neither a model nor an encoding is configured.
const DefaultEncoding = "cl100k_base"

// ErrTokenizerUnavailable is returned when BPE ranks cannot be loaded.
var ErrTokenizerUnavailable = errors.New("tokenizer unavailable")

// tiktoken keeps a single process-wide loader, so swaps are serialized.
var loaderMu sync.Mutex

// dirLoader reads `<encoding>.tiktoken` rank files from a local directory.
// It never touches the network.
type dirLoader struct {
	dir string
}

func (l *dirLoader) LoadTiktokenBpe(tiktokenBpeFile string) (map[string]int, error) {
	if l.dir == "" {
		return nil, fmt.Errorf("no tokenizer directory configured for %s", path.Base(tiktokenBpeFile))
	}
	f, err := os.Open(filepath.Join(l.dir, path.Base(tiktokenBpeFile)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ranks := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed rank line %q", line)
		}
		token, err := base64.StdEncoding.DecodeString(parts[0])
		if err != nil {
			return nil, err
		}
		rank, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, err
		}
		ranks[string(token)] = rank
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ranks, nil
}

// TiktokenEstimator counts exact BPE tokens.
type TiktokenEstimator struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTiktokenEstimator loads the encoding for model (when set) or the named
// encoding from dir. Errors wrap ErrTokenizerUnavailable.
func NewTiktokenEstimator(dir, model, encoding string) (*TiktokenEstimator, error) {
	loaderMu.Lock()
	defer loaderMu.Unlock()
	tiktoken.SetBpeLoader(&dirLoader{dir: dir})

	if model != "" {
		enc, err := tiktoken.EncodingForModel(model)
		if err == nil {
			return &TiktokenEstimator{enc: enc, encoding: "model:" + model}, nil
		}
	}
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTokenizerUnavailable, encoding, err)
	}
	return &TiktokenEstimator{enc: enc, encoding: encoding}, nil
}

func (t *TiktokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *TiktokenEstimator) Kind() UnitKind { return UnitToken }

func (t *TiktokenEstimator) Name() string { return "tiktoken/" + t.encoding }
