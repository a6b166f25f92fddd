package detect

import (
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"reportdash/internal/loader"
)

// Query is a user-defined signature written as a jq expression evaluated
// against the whole dataset, e.g. `.quality.score == 42`.
type Query struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Query string `json:"query" yaml:"query" toml:"query"`
}

// QuerySignature compiles q. The signature matches when the expression
// yields any value other than null or false; evaluation errors count as no
// match.
func QuerySignature(q Query) (Signature, error) {
	expr := strings.TrimSpace(q.Query)
	if expr == "" {
		return Signature{}, fmt.Errorf("sample query %q: empty expression", q.Name)
	}
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return Signature{}, fmt.Errorf("sample query %q: %w", q.Name, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return Signature{}, fmt.Errorf("sample query %q: %w", q.Name, err)
	}
	name := q.Name
	if name == "" {
		name = expr
	}
	return Signature{
		Name: "query:" + name,
		Match: func(ds *loader.Dataset) bool {
			iter := code.Run(ds.Map())
			for {
				v, ok := iter.Next()
				if !ok {
					return false
				}
				if _, isErr := v.(error); isErr {
					return false
				}
				if v != nil && v != false {
					return true
				}
			}
		},
	}, nil
}

// QuerySignatures compiles every query, failing on the first invalid one.
func QuerySignatures(qs []Query) ([]Signature, error) {
	out := make([]Signature, 0, len(qs))
	for _, q := range qs {
		s, err := QuerySignature(q)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
