package main

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

const defaultEncoding = "p50k_base"

// Tokenizer converts text into a sequence of token ids. Only the length of
// the sequence is used; implementations must accept any text, including "".
type Tokenizer interface {
	Encode(text string) ([]int, error)
}

type tokenizerOptions struct {
	Encoding string
	Model    string
	File     string
}

// tiktokenTokenizer encodes with a tiktoken BPE encoding, treating special
// token text as special tokens.
type tiktokenTokenizer struct {
	tkm *tiktoken.Tiktoken
}

func (t *tiktokenTokenizer) Encode(text string) ([]int, error) {
	return t.tkm.Encode(text, []string{"all"}, nil), nil
}

// hfTokenizer encodes with a HuggingFace tokenizer.json.
type hfTokenizer struct {
	tk *hf.Tokenizer
}

func (t *hfTokenizer) Encode(text string) ([]int, error) {
	if text == "" {
		return nil, nil
	}
	en, err := t.tk.EncodeSingle(text)
	if err != nil {
		return nil, err
	}
	return en.Ids, nil
}

// newTokenizer loads the tokenizer selected by opts: a tokenizer.json file
// if File is set, else the tiktoken encoding for Model, else Encoding
// (defaulting to p50k_base).
func newTokenizer(opts tokenizerOptions) (Tokenizer, error) {
	if opts.File != "" {
		tk, err := pretrained.FromFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", opts.File, err)
		}
		return &hfTokenizer{tk: tk}, nil
	}

	if opts.Model != "" {
		tkm, err := tiktoken.EncodingForModel(opts.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to get tokenizer for model %q: %w", opts.Model, err)
		}
		return &tiktokenTokenizer{tkm: tkm}, nil
	}

	encoding := opts.Encoding
	if encoding == "" {
		encoding = defaultEncoding
	}
	tkm, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding %q: %w", encoding, err)
	}
	return &tiktokenTokenizer{tkm: tkm}, nil
}
