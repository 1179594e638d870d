package gameclient

import (
	"context"

	"visionlab/internal/view"
)

// Kind tells which call a Reply answers.
type Kind int

const (
	KindNewRound Kind = iota
	KindAsk
	KindSubmit
	KindSpoiler
	kindCount
)

// Reply is the outcome of one background call. Only the field matching
// Kind is set.
type Reply struct {
	Kind    Kind
	Token   uint64
	Round   Round
	Answer  Answer
	Result  Result
	Spoiler Spoiler
	Err     error
}

// Async runs calls in goroutines for a single-threaded UI loop. Each kind
// of call has its own Sequencer, and Poll hands back a reply only while
// its token is still the latest of that kind.
type Async struct {
	c    *Client
	ctx  context.Context
	seqs [kindCount]view.Sequencer
	out  chan Reply
}

func NewAsync(ctx context.Context, c *Client) *Async {
	return &Async{c: c, ctx: ctx, out: make(chan Reply, 16)}
}

func (a *Async) start(kind Kind, call func(ctx context.Context, r *Reply)) uint64 {
	token := a.seqs[kind].Next()
	go func() {
		r := Reply{Kind: kind, Token: token}
		call(a.ctx, &r)
		select {
		case a.out <- r:
		case <-a.ctx.Done():
		}
	}()
	return token
}

func (a *Async) NewRound() uint64 {
	return a.start(KindNewRound, func(ctx context.Context, r *Reply) {
		r.Round, r.Err = a.c.NewRound(ctx)
	})
}

func (a *Async) Ask(lens1, lens2 float64) uint64 {
	return a.start(KindAsk, func(ctx context.Context, r *Reply) {
		r.Answer, r.Err = a.c.Ask(ctx, lens1, lens2)
	})
}

func (a *Async) Submit(guess float64) uint64 {
	return a.start(KindSubmit, func(ctx context.Context, r *Reply) {
		r.Result, r.Err = a.c.Submit(ctx, guess)
	})
}

func (a *Async) Spoiler(lens float64) uint64 {
	return a.start(KindSpoiler, func(ctx context.Context, r *Reply) {
		r.Spoiler, r.Err = a.c.Spoiler(ctx, lens)
	})
}

// Poll returns the next current reply without blocking. Stale replies
// are dropped on the way.
func (a *Async) Poll() (Reply, bool) {
	for {
		select {
		case r := <-a.out:
			if a.seqs[r.Kind].IsLatest(r.Token) {
				return r, true
			}
		default:
			return Reply{}, false
		}
	}
}

// Wait blocks until a current reply arrives or ctx ends.
func (a *Async) Wait(ctx context.Context) (Reply, bool) {
	for {
		select {
		case r := <-a.out:
			if a.seqs[r.Kind].IsLatest(r.Token) {
				return r, true
			}
		case <-ctx.Done():
			return Reply{}, false
		}
	}
}
