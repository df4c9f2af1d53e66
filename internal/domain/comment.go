package domain

import "time"

// Comment is a message on a ticket's thread.
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    string
	Body        string
	Internal    bool
	Attachments []Attachment
	CreatedAt   time.Time
}
