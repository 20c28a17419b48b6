package corpus

import "strings"

// Tokenize splits one side of a sentence pair on whitespace. It is the
// entire tokenizer this trainer needs: the corpus format already commits
// to whitespace-separated tokens, so there is no case-folding, no
// punctuation splitting, and no subword segmentation to do here.
func Tokenize(side string) []string {
	return strings.Fields(side)
}
