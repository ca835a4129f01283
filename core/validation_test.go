package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				LawTitle:      "The Penal Code, 1860",
				SectionNumber: "379",
				Text:          "Whoever commits theft shall be punished...",
				ChunkIndex:    12,
			},
			wantErr: nil,
		},
		{
			name: "valid chunk without citation metadata",
			chunk: &Chunk{
				Text: "some text",
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty text",
			chunk: &Chunk{
				LawTitle: "The Penal Code, 1860",
			},
			wantErr: ErrEmptyChunkText,
		},
		{
			name: "negative index",
			chunk: &Chunk{
				Text:       "text",
				ChunkIndex: -1,
			},
			wantErr: ErrInvalidChunkIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTurn(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		turn    *Turn
		wantErr error
	}{
		{
			name:    "valid human turn",
			turn:    &Turn{Role: RoleHuman, Text: "What is the punishment for theft?", Timestamp: now},
			wantErr: nil,
		},
		{
			name:    "valid ai turn",
			turn:    &Turn{Role: RoleAI, Text: "Under section 379...", Timestamp: now},
			wantErr: nil,
		},
		{
			name:    "nil turn",
			turn:    nil,
			wantErr: ErrInvalidTurn,
		},
		{
			name:    "empty text",
			turn:    &Turn{Role: RoleHuman, Timestamp: now},
			wantErr: ErrEmptyTurnText,
		},
		{
			name:    "invalid role",
			turn:    &Turn{Role: Role(99), Text: "hello", Timestamp: now},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "future timestamp",
			turn:    &Turn{Role: RoleHuman, Text: "hello", Timestamp: now.Add(24 * time.Hour)},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurn(tt.turn)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTurn() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTurn() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
