// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package i18n

import "testing"

func TestNew(t *testing.T) {
	t.Run("new i18n provider with empty locale string succeeds", func(t *testing.T) {
		provider, err := New("")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if provider == nil {
			t.Fatal("expected i18n provider to be non-nil")
		}
	})
	t.Run("arabic locale translates narration strings", func(t *testing.T) {
		provider, err := New("ar-SA")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		got := provider.Get("Next stop")
		if got != "المحطة التالية" {
			t.Errorf("expected Arabic translation, got %q", got)
		}
	})
	t.Run("unknown locale falls back to English", func(t *testing.T) {
		provider, err := New("tlh")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Next stop"); got != "Next stop" {
			t.Errorf("expected English fallback, got %q", got)
		}
	})
}
