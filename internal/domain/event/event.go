package event

import "time"

type Type string

const (
	TypePromptCreated     Type = "prompt_created"
	TypePromptUpdated     Type = "prompt_updated"
	TypePromptDeleted     Type = "prompt_deleted"
	TypePromptPinned      Type = "prompt_pinned"
	TypePromptRated       Type = "prompt_rated"
	TypeVocabularyChanged Type = "vocabulary_changed"
	TypeDocumentSynced    Type = "document_synced"
	TypeHandoffSubmitted  Type = "handoff_submitted"
	TypeDataCleared       Type = "data_cleared"
)

// Channel groups event types sharing one subscription.
type Channel string

const (
	ChannelDocument Channel = "document"
	ChannelEditor   Channel = "editor"
)

var typeToChannel = map[Type]Channel{
	TypePromptCreated:     ChannelDocument,
	TypePromptUpdated:     ChannelDocument,
	TypePromptDeleted:     ChannelDocument,
	TypePromptPinned:      ChannelDocument,
	TypePromptRated:       ChannelDocument,
	TypeVocabularyChanged: ChannelDocument,
	TypeDataCleared:       ChannelDocument,
	TypeDocumentSynced:    ChannelEditor,
	TypeHandoffSubmitted:  ChannelEditor,
}

// ChannelFor returns the channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state. Subscribers fetch fresh
// state from the document store. EntityID is a prompt id or a label name,
// depending on the event type; empty for document-wide events.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID string) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
