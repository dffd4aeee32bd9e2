// Package events carries local record mutations to the ATS sync without
// making the mutating request wait for it.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQueueFull = errors.New("events: queue full")
	ErrClosed    = errors.New("events: dispatcher closed")
)

type Kind string

const (
	KindJob       Kind = "job"
	KindCandidate Kind = "candidate"
)

func (k Kind) Valid() bool {
	return k == KindJob || k == KindCandidate
}

// RecordUpserted is published after a job or candidate is created or updated
// locally.
type RecordUpserted struct {
	Kind    Kind      `json:"kind"`
	LocalID uuid.UUID `json:"local_id"`
	At      time.Time `json:"at"`
}

func JobUpserted(id uuid.UUID) RecordUpserted {
	return RecordUpserted{Kind: KindJob, LocalID: id, At: time.Now().UTC()}
}

func CandidateUpserted(id uuid.UUID) RecordUpserted {
	return RecordUpserted{Kind: KindCandidate, LocalID: id, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, evt RecordUpserted) error
}

type Handler func(ctx context.Context, evt RecordUpserted) error
