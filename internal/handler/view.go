package handler

import (
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/seating"
)

// eventView is an event with its seat counts derived at render time.
type eventView struct {
	Event  model.Event    `json:"event"`
	Counts seating.Counts `json:"counts"`
}

func viewOf(ev model.Event) eventView {
	return eventView{Event: ev, Counts: seating.CountsOf(ev)}
}

func viewsOf(events []model.Event) []eventView {
	out := make([]eventView, 0, len(events))
	for _, ev := range events {
		out = append(out, viewOf(ev))
	}
	return out
}

type inboxView struct {
	Items  []model.Notification `json:"items"`
	Unread int                  `json:"unread"`
}

func inboxOf(in *seating.Inbox) inboxView {
	items := in.Items
	if items == nil {
		items = []model.Notification{}
	}
	return inboxView{Items: items, Unread: in.UnreadCount()}
}
