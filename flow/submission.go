// Package flow tracks form submissions that call out to a collaborator, so a browser can only
// have one outstanding call per form at a time.
//
// A submission moves Idle -> Submitting -> Idle. Callers that submit the same key and the same
// fingerprint while a call is outstanding join that call instead of starting a new one. A
// different fingerprint for a key that is Submitting is refused with ErrInProgress.
package flow

import (
  "context"
  "errors"
  "sync"
  "golang.org/x/sync/singleflight"
)

var ErrInProgress = errors.New("a different submission is already in progress")

type State int

const (
  Idle State = iota
  Submitting
)

func (s State) String() string {
  switch s {
  case Submitting:
    return "submitting"
  default:
    return "idle"
  }
}

type Outcome struct {
  Result interface{}
  Err    error

  // Leader is true only for the caller that started the call.
  Leader bool
}

type Tracker struct {
  group singleflight.Group

  mu     sync.Mutex
  // Outstanding submissions by key, holding the fingerprint of the call in flight.
  inflight map[string]string
}

func NewTracker() *Tracker {
  return &Tracker{
    inflight: make(map[string]string),
  }
}

// Do runs fn for key unless a call for key with the same fingerprint is already outstanding, in
// which case it waits for that call and shares its outcome. If the outstanding call has another
// fingerprint fn is not run and the outcome carries ErrInProgress. fn receives ctx untouched.
func (t *Tracker) Do(ctx context.Context, key string, fingerprint string, fn func(ctx context.Context) (interface{}, error)) Outcome {
  var leader bool
  v, err, _ := t.group.Do(key + "\x00" + fingerprint, func() (interface{}, error) {
    leader = true
    if !t.begin(key, fingerprint) {
      return nil, ErrInProgress
    }
    defer t.end(key)
    return fn(ctx)
  })
  return Outcome{Result: v, Err: err, Leader: leader}
}

func (t *Tracker) State(key string) State {
  t.mu.Lock()
  defer t.mu.Unlock()
  if _, ok := t.inflight[key]; ok {
    return Submitting
  }
  return Idle
}

func (t *Tracker) begin(key string, fingerprint string) bool {
  t.mu.Lock()
  defer t.mu.Unlock()
  if _, ok := t.inflight[key]; ok {
    return false
  }
  t.inflight[key] = fingerprint
  return true
}

func (t *Tracker) end(key string) {
  t.mu.Lock()
  defer t.mu.Unlock()
  delete(t.inflight, key)
}
