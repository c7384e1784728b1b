package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"libercare/orchestrator"
	"libercare/types"
)

type fakeRefresher struct {
	calls []types.Language
	err   error
}

func (f *fakeRefresher) RunLanguage(ctx context.Context, lang types.Language) error {
	f.calls = append(f.calls, lang)
	return f.err
}

func TestRefreshHandler(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		runErr    error
		wantMark  bool
		wantErr   bool
		wantCalls []types.Language
	}{
		{"single language", `{"language":"EN"}`, nil, true, false, []types.Language{types.LanguageEN}},
		{"all languages", `{}`, nil, true, false, []types.Language{""}},
		{"unsupported language", `{"language":"de"}`, nil, true, false, nil},
		{"invalid json", `{"language":`, nil, true, false, nil},
		{"run in progress", `{"language":"ru"}`, fmt.Errorf("%w (run x)", orchestrator.ErrRunInProgress), true, false, []types.Language{types.LanguageRU}},
		{"refresh failure", `{"language":"fr"}`, errors.New("search down"), false, true, []types.Language{types.LanguageFR}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRefresher{err: tt.runErr}
			h := NewRefreshHandler(r)
			mark, err := h.HandleMessage(context.Background(), []byte(tt.message))
			if mark != tt.wantMark {
				t.Errorf("mark = %v; want %v", mark, tt.wantMark)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v; wantErr %v", err, tt.wantErr)
			}
			if fmt.Sprintf("%q", r.calls) != fmt.Sprintf("%q", tt.wantCalls) {
				t.Errorf("calls = %v; want %v", r.calls, tt.wantCalls)
			}
		})
	}
}
