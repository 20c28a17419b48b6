package corpus

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nlpcore/fastalign/ttable"
)

// Delim is the literal field separator between a pair's source and target
// sides.
const Delim = " ||| "

// maxLineBytes bounds how long a single corpus line may be, the same
// defensive scanner buffer size the rest of the retrieval pack reaches for
// when scanning arbitrarily-long corpus lines.
const maxLineBytes = 1 << 20

// SentencePair is one training or test example: parallel source and
// target word-id sequences, in file order.
type SentencePair struct {
	Src, Trg []ttable.WordID
}

// FormatError reports a malformed corpus line with enough context for an
// operator to find and fix it: the 1-based line number and the raw text.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (this *FormatError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", this.Line, this.Reason, this.Text)
}

// PairReader streams SentencePair values for one pass over a corpus. Next
// returns io.EOF once the pass is exhausted.
type PairReader interface {
	Next() (SentencePair, error)
	Close() error
}

// FileReader is a PairReader over a corpus file, interning tokens through
// a shared Vocabulary as it reads. It transparently gunzips the file when
// its contents carry the gzip magic number, so a corpus may be handed to
// the trainer compressed or not without the caller knowing which.
type FileReader struct {
	f       *os.File
	r       io.Reader
	scanner *bufio.Scanner
	vocab   Vocabulary
	lineNum int
}

// OpenFile opens path for one pass over the corpus.
func OpenFile(path string, vocab Vocabulary) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	var r io.Reader = br
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, gzErr := gzip.NewReader(br)
		if gzErr != nil {
			f.Close()
			return nil, gzErr
		}
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)
	return &FileReader{f: f, r: r, scanner: scanner, vocab: vocab}, nil
}

// Next returns the next sentence pair, or io.EOF when the file is
// exhausted.
func (this *FileReader) Next() (SentencePair, error) {
	if !this.scanner.Scan() {
		if err := this.scanner.Err(); err != nil {
			return SentencePair{}, err
		}
		return SentencePair{}, io.EOF
	}
	this.lineNum++
	return parseLine(this.scanner.Text(), this.lineNum, this.vocab)
}

// Close releases the underlying file handle.
func (this *FileReader) Close() error {
	if gz, ok := this.r.(*gzip.Reader); ok {
		gz.Close()
	}
	return this.f.Close()
}

func parseLine(line string, lineNum int, vocab Vocabulary) (SentencePair, error) {
	idx := strings.Index(line, Delim)
	if idx < 0 {
		return SentencePair{}, &FormatError{Line: lineNum, Text: line, Reason: "missing ||| delimiter"}
	}
	srcSide := line[:idx]
	rest := line[idx+len(Delim):]
	trgSide := rest
	if j := strings.Index(rest, Delim); j >= 0 {
		trgSide = rest[:j] // an optional trailing field is ignored
	}

	src := internTokens(srcSide, vocab)
	trg := internTokens(trgSide, vocab)
	if len(src) == 0 || len(trg) == 0 {
		return SentencePair{}, &FormatError{Line: lineNum, Text: line, Reason: "empty sentence side"}
	}
	return SentencePair{Src: src, Trg: trg}, nil
}

func internTokens(side string, vocab Vocabulary) []ttable.WordID {
	fields := Tokenize(side)
	if len(fields) == 0 {
		return nil
	}
	ids := make([]ttable.WordID, len(fields))
	for i, tok := range fields {
		ids[i] = vocab.Intern(tok)
	}
	return ids
}
