package amqp

import (
	"context"
	"errors"
	"testing"

	"familyassets/internal/log"
)

type fakeReloader struct {
	calls   int
	changed bool
	err     error
}

func (f *fakeReloader) Reload(context.Context) (bool, error) {
	f.calls++
	return f.changed, f.err
}

func TestReloadHandler(t *testing.T) {
	tests := []struct {
		name         string
		msgOrigin    string
		changed      bool
		err          error
		wantReloads  int
		wantOnChange int
	}{
		{name: "own change is skipped", msgOrigin: "self", changed: true},
		{name: "remote change reloads", msgOrigin: "other", changed: true, wantReloads: 1, wantOnChange: 1},
		{name: "message without origin reloads", changed: true, wantReloads: 1, wantOnChange: 1},
		{name: "unchanged reload keeps cache", msgOrigin: "other", wantReloads: 1},
		{name: "failed reload is acknowledged", msgOrigin: "other", err: errors.New("storage down"), wantReloads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeReloader{changed: tt.changed, err: tt.err}
			invalidated := 0
			h := NewReloadHandler("self", r, func() { invalidated++ }, log.Discard())

			msg := NewAssetChangedMessage("added", "a1", 3)
			msg.Origin = tt.msgOrigin
			if err := h(context.Background(), msg); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if r.calls != tt.wantReloads {
				t.Errorf("reloads = %d, want %d", r.calls, tt.wantReloads)
			}
			if invalidated != tt.wantOnChange {
				t.Errorf("onChange calls = %d, want %d", invalidated, tt.wantOnChange)
			}
		})
	}
}
