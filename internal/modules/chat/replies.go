package chat

import (
	"math/rand/v2"
	"strings"
)

// Picker returns an index in [0, n).
type Picker func(n int) int

// Responder renders canned replies. pick defaults to math/rand.
type Responder struct {
	catalog *Catalog
	pick    Picker
}

func NewResponder(c *Catalog, pick Picker) *Responder {
	if pick == nil {
		pick = rand.IntN
	}
	return &Responder{catalog: c, pick: pick}
}

func (r *Responder) Inappropriate(subject string) string {
	return r.render(r.catalog.Replies.Inappropriate, subject, "")
}

func (r *Responder) OffTopic(subject, topic string) string {
	return r.render(r.catalog.Replies.OffTopic, subject, topic)
}

func (r *Responder) FreshStart(subject string) string {
	return r.render(r.catalog.Replies.FreshStart, subject, "")
}

func (r *Responder) render(variants []string, subject, topic string) string {
	msg := variants[r.pick(len(variants))]
	focus := ""
	if topic != "" {
		focus = " for " + topic
	}
	return strings.NewReplacer("{subject}", subject, "{topic_focus}", focus).Replace(msg)
}
