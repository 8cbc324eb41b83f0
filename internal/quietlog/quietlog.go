// Package quietlog discards output sent to the standard library's default
// logger. Some dependencies log from their init functions; importing this
// package first keeps those lines off stderr, which carries only the
// tool's own diagnostics.
//
// Its import path sorts ahead of github.com/sugarme, so it is initialized
// before the HuggingFace tokenizer package.
package quietlog

import (
	"io"
	"log"
)

func init() {
	log.SetOutput(io.Discard)
}
