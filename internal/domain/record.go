package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

// CachedPost is the durable record of a processed post. It is either a
// SourceRecord (ingested from a source page) or a TargetRecord (published to a
// target page).
type CachedPost interface {
	PostID() string
	Original() Post
	Envelope() Envelope
}

type SourceRecord struct {
	Post         Post
	SourcePageID int64
}

type TargetRecord struct {
	Post         Post
	TargetPageID int64
	Published    bool
}

var (
	_ CachedPost = SourceRecord{}
	_ CachedPost = TargetRecord{}
)

func (r SourceRecord) PostID() string { return r.Post.ID }
func (r SourceRecord) Original() Post { return r.Post }

func (r SourceRecord) Envelope() Envelope {
	e := envelopeOf(r.Post)
	e.SourcePageID = r.SourcePageID
	return e
}

func (r TargetRecord) PostID() string { return r.Post.ID }
func (r TargetRecord) Original() Post { return r.Post }

func (r TargetRecord) Envelope() Envelope {
	e := envelopeOf(r.Post)
	e.TargetPageID = r.TargetPageID
	e.Published = r.Published
	return e
}

// Envelope is the persisted JSON shape of a cached post.
type Envelope struct {
	ID               string   `json:"id"`
	Message          string   `json:"message"`
	Type             PostType `json:"type"`
	ObjectID         int64    `json:"objectId"`
	RequestedDetails bool     `json:"requestedDetails"`
	SourcePageID     int64    `json:"sourcePageId"`
	TargetPageID     int64    `json:"targetPageId"`
	Published        bool     `json:"published"`
}

func envelopeOf(p Post) Envelope {
	return Envelope{
		ID:               p.ID,
		Message:          p.Message,
		Type:             p.Type,
		ObjectID:         p.ObjectID,
		RequestedDetails: p.DetailsFetched,
	}
}

// Record turns the envelope back into its variant. A non-zero target page id
// marks a target record; everything else is a source record.
func (e Envelope) Record() CachedPost {
	post := Post{
		ID:             e.ID,
		Type:           e.Type,
		Message:        e.Message,
		ObjectID:       e.ObjectID,
		DetailsFetched: e.RequestedDetails,
	}
	if e.TargetPageID != 0 {
		return TargetRecord{Post: post, TargetPageID: e.TargetPageID, Published: e.Published}
	}
	return SourceRecord{Post: post, SourcePageID: e.SourcePageID}
}

func MarshalRecord(r CachedPost) ([]byte, error) {
	data, err := json.MarshalIndent(r.Envelope(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cached post %s: %w", r.PostID(), err)
	}
	return data, nil
}

func UnmarshalRecord(data []byte) (CachedPost, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal cached post: %w", err)
	}
	return e.Record(), nil
}
