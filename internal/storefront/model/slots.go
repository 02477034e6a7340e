package model

import "context"

type SlotRepository interface {
	// Load returns the raw slot content. ok is false when the slot was never written.
	Load(ctx context.Context, session, slot string) (data []byte, ok bool, err error)

	// Save replaces the slot content.
	Save(ctx context.Context, session, slot string, data []byte) error

	// Clear removes every slot of the session.
	Clear(ctx context.Context, session string) error
}
