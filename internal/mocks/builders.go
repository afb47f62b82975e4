package mocks

import (
	"time"

	"github.com/google/uuid"

	"github.com/metamuse/musecore/internal/muse"
)

// MemoryEntryBuilder creates muse.MemoryEntry instances for testing.
type MemoryEntryBuilder struct {
	entry muse.MemoryEntry
}

// NewMemoryEntryBuilder creates a builder with sensible defaults.
func NewMemoryEntryBuilder() *MemoryEntryBuilder {
	return &MemoryEntryBuilder{
		entry: muse.MemoryEntry{
			ID:         uuid.NewString(),
			Content:    "Test memory content",
			AIResponse: "Test muse response",
			Category:   muse.CategoryFactual,
			Tags:       []string{"test"},
			Importance: 0.5,
			Timestamp:  time.Now(),
		},
	}
}

// WithID sets the entry id.
func (b *MemoryEntryBuilder) WithID(id string) *MemoryEntryBuilder {
	b.entry.ID = id
	return b
}

// WithContent sets the entry content.
func (b *MemoryEntryBuilder) WithContent(content string) *MemoryEntryBuilder {
	b.entry.Content = content
	return b
}

// WithCategory sets the entry category.
func (b *MemoryEntryBuilder) WithCategory(category muse.MemoryCategory) *MemoryEntryBuilder {
	b.entry.Category = category
	return b
}

// WithTags sets the entry tags.
func (b *MemoryEntryBuilder) WithTags(tags ...string) *MemoryEntryBuilder {
	b.entry.Tags = tags
	return b
}

// WithImportance sets the entry importance.
func (b *MemoryEntryBuilder) WithImportance(importance float64) *MemoryEntryBuilder {
	b.entry.Importance = importance
	return b
}

// WithTimestamp sets the entry timestamp.
func (b *MemoryEntryBuilder) WithTimestamp(ts time.Time) *MemoryEntryBuilder {
	b.entry.Timestamp = ts
	return b
}

// Build returns the constructed entry.
func (b *MemoryEntryBuilder) Build() muse.MemoryEntry {
	return b.entry
}

// MessageBuilder creates muse.Message instances for testing.
type MessageBuilder struct {
	msg muse.Message
}

// NewMessageBuilder creates a builder with sensible defaults.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		msg: muse.Message{
			ID:                 uuid.NewString(),
			Content:            "Test message content",
			Role:               muse.RoleUser,
			Timestamp:          time.Now(),
			VerificationStatus: muse.StatusCommitted,
		},
	}
}

// WithID sets the message id.
func (b *MessageBuilder) WithID(id string) *MessageBuilder {
	b.msg.ID = id
	return b
}

// WithContent sets the message content.
func (b *MessageBuilder) WithContent(content string) *MessageBuilder {
	b.msg.Content = content
	return b
}

// WithRole sets the message author role.
func (b *MessageBuilder) WithRole(role muse.Role) *MessageBuilder {
	b.msg.Role = role
	return b
}

// WithStatus sets the verification status.
func (b *MessageBuilder) WithStatus(status muse.VerificationStatus) *MessageBuilder {
	b.msg.VerificationStatus = status
	return b
}

// WithTimestamp sets the message timestamp.
func (b *MessageBuilder) WithTimestamp(ts time.Time) *MessageBuilder {
	b.msg.Timestamp = ts
	return b
}

// Build returns the constructed message.
func (b *MessageBuilder) Build() muse.Message {
	return b.msg
}
