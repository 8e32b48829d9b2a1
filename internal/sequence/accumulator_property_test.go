package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/input/key"
)

// runTokens feeds toks through a fresh accumulator and returns the emitted
// snapshots and the final buffer.
func runTokens(toks []key.Token) ([]string, string, error) {
	tokens := broadcast.New[key.Token](len(toks) + 1)
	acc := New(WithPublisher(broadcast.New[string](len(toks) + 1)))
	srx, err := acc.Subscribe()
	if err != nil {
		return nil, "", err
	}
	rx := tokens.Subscribe()
	for _, tok := range toks {
		_ = tokens.Publish(tok)
	}
	tokens.Close()

	if err := acc.Run(context.Background(), rx); err != nil {
		return nil, "", err
	}

	var snaps []string
	for {
		s, err := srx.TryRecv()
		if errors.Is(err, broadcast.ErrClosed) {
			break
		}
		if err != nil {
			return nil, "", err
		}
		snaps = append(snaps, s)
	}
	final, err := acc.String(context.Background())
	return snaps, final, err
}

// genToken yields mostly letters with occasional escapes.
func genToken() gopter.Gen {
	return gen.Weighted([]gen.WeightedGen{
		{Weight: 8, Gen: gen.AlphaNumChar().Map(func(r rune) key.Token { return key.Alphanumeric(r) })},
		{Weight: 2, Gen: gen.Const(key.NewSpecial(key.SpecialEsc))},
	})
}

func TestAccumulatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("characters without escape concatenate in order", prop.ForAll(
		func(s string) bool {
			var toks []key.Token
			for _, r := range s {
				toks = append(toks, key.Alphanumeric(r))
			}
			snaps, final, err := runTokens(toks)
			if err != nil || final != s || len(snaps) != len([]rune(s)) {
				return false
			}
			return len(snaps) == 0 || snaps[len(snaps)-1] == s
		},
		gen.AlphaString(),
	))

	properties.Property("escape always resets to empty", prop.ForAll(
		func(s string, escapes int) bool {
			var toks []key.Token
			for _, r := range s {
				toks = append(toks, key.Alphanumeric(r))
			}
			for i := 0; i < escapes; i++ {
				toks = append(toks, key.NewSpecial(key.SpecialEsc))
			}
			snaps, final, err := runTokens(toks)
			if err != nil || final != "" {
				return false
			}
			for _, snap := range snaps[len(snaps)-escapes:] {
				if snap != "" {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.IntRange(1, 4),
	))

	properties.Property("one snapshot per token, matching a reference model", prop.ForAll(
		func(toks []key.Token) bool {
			snaps, final, err := runTokens(toks)
			if err != nil || len(snaps) != len(toks) {
				return false
			}
			var model []rune
			for i, tok := range toks {
				if r, ok := tok.Char(); ok {
					model = append(model, r)
				} else {
					model = model[:0]
				}
				if snaps[i] != string(model) {
					return false
				}
			}
			return final == string(model)
		},
		gen.SliceOf(genToken()),
	))

	properties.TestingRun(t)
}
