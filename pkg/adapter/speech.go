package adapter

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
)

// Delivery describes how a recognizer reports transcripts: each result as
// only the newly recognized words, or the full transcript-so-far each time.
type Delivery string

const (
	DeliveryChunk      Delivery = "chunk"
	DeliveryCumulative Delivery = "cumulative"
)

type StartOptions struct {
	Lang       string
	Continuous bool
	Delivery   Delivery
}

// Subscription represents an active recognition stream
type Subscription struct {
	cancel func() error
	done   chan struct{}
}

// Done is closed when the recognition stream ends, whether by Stop or by
// the input source running out
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Recognizer is the speech collaborator. Availability must be checked
// before Start; starting an unavailable recognizer is an error.
type Recognizer interface {
	IsAvailable() bool
	RequestPermission(ctx context.Context) (bool, error)
	Start(ctx context.Context, opts StartOptions, onResult func(text string)) (*Subscription, error)
	Stop(sub *Subscription) error
}

// terminalRecognizer reads dictated lines from an interactive terminal.
// Every entered line is treated as one recognition result; in cumulative
// mode the full utterance so far is re-sent on every result, which is how
// real recognizers behave when they keep refining the transcript.
type terminalRecognizer struct {
	mu     sync.Mutex
	active bool
}

// NewTerminalRecognizer creates a recognizer backed by terminal input
func NewTerminalRecognizer() Recognizer {
	return &terminalRecognizer{}
}

func (r *terminalRecognizer) IsAvailable() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (r *terminalRecognizer) RequestPermission(ctx context.Context) (bool, error) {
	// Terminal input needs no OS-level grant
	return true, nil
}

func (r *terminalRecognizer) Start(ctx context.Context, opts StartOptions, onResult func(text string)) (*Subscription, error) {
	if !r.IsAvailable() {
		return nil, goerr.Wrap(model.ErrSpeechUnavailable, "stdin is not a terminal")
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, goerr.New("recognition is already running")
	}
	r.active = true
	r.mu.Unlock()

	rl, err := readline.New("🎙 ")
	if err != nil {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		return nil, goerr.Wrap(err, "failed to open terminal reader")
	}

	sub := &Subscription{
		done: make(chan struct{}),
		cancel: func() error {
			return rl.Close()
		},
	}

	go func() {
		defer close(sub.done)
		defer func() {
			r.mu.Lock()
			r.active = false
			r.mu.Unlock()
		}()

		var utterance []string
		for {
			line, err := rl.Readline()
			if err != nil {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			switch opts.Delivery {
			case DeliveryCumulative:
				utterance = append(utterance, line)
				onResult(strings.Join(utterance, " "))
			default:
				onResult(line)
			}

			if !opts.Continuous {
				return
			}
		}
	}()

	return sub, nil
}

func (r *terminalRecognizer) Stop(sub *Subscription) error {
	if sub == nil {
		return nil
	}
	err := sub.cancel()
	<-sub.done
	if err != nil {
		return goerr.Wrap(err, "failed to stop recognition")
	}
	return nil
}
