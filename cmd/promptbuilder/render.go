package main

import "fmt"

// tokenCountRenderer reports how many tokens a file's filtered contents
// encode to, one line per file.
type tokenCountRenderer struct {
	tokenizer Tokenizer
}

func (r tokenCountRenderer) Render(name string, filtered string) (string, error) {
	tokens, err := r.tokenizer.Encode(filtered)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize %s: %w", name, err)
	}
	return fmt.Sprintf("%s   %d tokens\n", name, len(tokens)), nil
}

// promptRenderer emits the file name, a blank line and the filtered contents
// verbatim.
type promptRenderer struct{}

func (promptRenderer) Render(name string, filtered string) (string, error) {
	return name + "\n\n" + filtered + "\n", nil
}
