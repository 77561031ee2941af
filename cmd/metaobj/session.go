package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/str"
)

// Session reads commands of the form
//
//	receiver selector arg...
//
// and prints the description of each result. Operands are class names,
// numbers, true and false, double-quoted strings, #symbols, or _ for the
// previous result.
type Session struct {
	// Prompt is printed before each command.
	Prompt string

	rt   *metaobj.Runtime
	last metaobj.Value
}

// NewSession creates a session sending messages in rt.
func NewSession(rt *metaobj.Runtime) *Session {
	return &Session{Prompt: "metaobj> ", rt: rt}
}

// Run executes commands from in until it is exhausted or a line reads exit.
func (s *Session) Run(in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, s.Prompt)
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "exit":
			return nil
		}
		s.print(out, line)
	}
}

// print evaluates a command and writes its result or error to out.
func (s *Session) print(out io.Writer, line string) {
	r, err := s.Eval(line)
	if err != nil {
		var exc *metaobj.Exception
		if errors.As(err, &exc) {
			fmt.Fprintln(out, "Exception:", exc)
		} else {
			fmt.Fprintln(out, "Error:", err)
		}
		return
	}
	fmt.Fprintln(out, r)
}

// Eval runs one command and returns the description of its result. The
// result is kept as _ until the next successful command.
func (s *Session) Eval(line string) (desc string, err error) {
	toks, err := tokenize(line)
	if err != nil {
		return "", err
	}
	if len(toks) < 2 {
		return "", fmt.Errorf("need a receiver and a selector, have %q", line)
	}
	s.rt.Collect(func() {
		var vals []metaobj.Value
		for _, tok := range append(toks[:1:1], toks[2:]...) {
			var v metaobj.Value
			v, err = s.operand(tok)
			if err != nil {
				return
			}
			vals = append(vals, v)
		}
		sel := s.rt.Intern(toks[1])
		if !s.rt.RespondsTo(vals[0], sel) && !s.rt.RespondsTo(vals[0], s.rt.Intern("forward")) {
			// Sending it anyway would fault.
			err = fmt.Errorf("%s does not respond to %s", s.rt.TypeName(vals[0]), toks[1])
			return
		}
		var r metaobj.Value
		err = s.rt.Protect(func() {
			r = s.rt.Send(vals[0], sel, vals[1:]...)
			desc = s.rt.Describe(r)
		})
		if err != nil {
			return
		}
		s.rt.Retain(r)
		s.rt.Release(s.last)
		s.last = r
	})
	return desc, err
}

// Close releases the previous result.
func (s *Session) Close() {
	s.rt.Release(s.last)
	s.last = metaobj.Absent
}

// operand converts a token to a value.
func (s *Session) operand(tok string) (metaobj.Value, error) {
	switch {
	case tok == "_":
		return s.last, nil
	case tok == "true":
		return metaobj.Bool(true), nil
	case tok == "false":
		return metaobj.Bool(false), nil
	case strings.HasPrefix(tok, `"`):
		t, err := strconv.Unquote(tok)
		if err != nil {
			return metaobj.Absent, fmt.Errorf("bad string %s: %w", tok, err)
		}
		return str.New(s.rt, t), nil
	case strings.HasPrefix(tok, "#") && len(tok) > 1:
		return metaobj.Ref(s.rt.Intern(tok[1:])), nil
	}
	if u, err := strconv.ParseUint(tok, 10, 64); err == nil {
		return metaobj.Uint(u), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return metaobj.Float(f), nil
	}
	if c, ok := s.rt.Class(tok); ok {
		return metaobj.Ref(c), nil
	}
	return metaobj.Absent, fmt.Errorf("unknown operand %q", tok)
}

// tokenize splits a command on spaces, keeping double-quoted strings with
// their escapes intact.
func tokenize(line string) ([]string, error) {
	var toks []string
	for i := 0; i < len(line); {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '"':
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				return nil, fmt.Errorf("unterminated string starting at column %d", i+1)
			}
			toks = append(toks, line[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			toks = append(toks, line[i:j])
			i = j
		}
	}
	return toks, nil
}
