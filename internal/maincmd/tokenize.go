package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/tickscript/lang/scanner"
	"github.com/mna/tickscript/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles scans each file in turn and prints its token stream, one
// token per line as "line:col: TOKEN_NAME [literal]", matching
// disasm's "keep printing, report failures at the end" behavior so a
// lexical error in one file doesn't hide the tokens of the others.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}

		toks, err := scanner.ScanAll(src)
		for _, tv := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", tv.Val.Pos, tv.Tok)
			switch tv.Tok {
			case token.IDENT, token.META:
				fmt.Fprintf(stdio.Stdout, " %q", tv.Val.Str)
			case token.STRING:
				fmt.Fprintf(stdio.Stdout, " %q", tv.Val.Str)
			case token.NUMBER:
				fmt.Fprintf(stdio.Stdout, " %v", tv.Val.Num)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
			failed = true
		}
	}
	if failed {
		return errors.New("tokenize: one or more files failed")
	}
	return nil
}
