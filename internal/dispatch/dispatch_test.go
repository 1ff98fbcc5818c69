// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
)

type fakeNarrator struct {
	mu       sync.Mutex
	spoken   []string
	langs    []string
	stops    int
	speaking bool
	fail     error
}

func (f *fakeNarrator) Speak(_ context.Context, text, languageTag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.spoken = append(f.spoken, text)
	f.langs = append(f.langs, languageTag)
	return nil
}

func (f *fakeNarrator) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.speaking = false
}

func (f *fakeNarrator) IsSpeaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

type fakeRewarder struct {
	mu    sync.Mutex
	tours []string
}

func (f *fakeRewarder) NotifyTourCompleted(tourID, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tours = append(f.tours, tourID)
}

type fakeNavigator struct{ dest geo.Coordinate }

func (f *fakeNavigator) OpenDirections(_ *geo.Coordinate, destination geo.Coordinate) error {
	f.dest = destination
	return nil
}

func testLog() *logger.Logger {
	return logger.NewLogger(slog.LevelError, io.Discard)
}

func TestDispatcher_Narrate(t *testing.T) {
	t.Run("narration is spoken in the configured language", func(t *testing.T) {
		narrator := &fakeNarrator{}
		d := New(narrator, nil, nil, "ar-SA", testLog())
		d.Narrate(t.Context(), "مرحبا بكم في قصر المصمك")
		if len(narrator.spoken) != 1 {
			t.Fatalf("expected 1 narration, got %d", len(narrator.spoken))
		}
		if narrator.langs[0] != "ar-SA" {
			t.Errorf("expected language ar-SA, got %q", narrator.langs[0])
		}
	})
	t.Run("in-flight narration is stopped first", func(t *testing.T) {
		narrator := &fakeNarrator{speaking: true}
		d := New(narrator, nil, nil, "en", testLog())
		d.Narrate(t.Context(), "next stop")
		if narrator.stops != 1 {
			t.Errorf("expected 1 stop before speaking, got %d", narrator.stops)
		}
		if len(narrator.spoken) != 1 {
			t.Errorf("expected narration after stop, got %d", len(narrator.spoken))
		}
	})
	t.Run("idle narrator is not stopped", func(t *testing.T) {
		narrator := &fakeNarrator{}
		d := New(narrator, nil, nil, "en", testLog())
		d.Narrate(t.Context(), "next stop")
		if narrator.stops != 0 {
			t.Errorf("expected no stop calls, got %d", narrator.stops)
		}
	})
	t.Run("empty text is skipped", func(t *testing.T) {
		narrator := &fakeNarrator{}
		d := New(narrator, nil, nil, "en", testLog())
		d.Narrate(t.Context(), "")
		if len(narrator.spoken) != 0 {
			t.Errorf("expected no narration, got %d", len(narrator.spoken))
		}
	})
	t.Run("nil narrator is tolerated", func(t *testing.T) {
		d := New(nil, nil, nil, "en", testLog())
		d.Narrate(t.Context(), "next stop")
	})
	t.Run("playback errors are swallowed", func(t *testing.T) {
		narrator := &fakeNarrator{fail: errors.New("speech backend gone")}
		d := New(narrator, nil, nil, "en", testLog())
		d.Narrate(t.Context(), "next stop")
	})
}

func TestDispatcher_CancelNarration(t *testing.T) {
	narrator := &fakeNarrator{speaking: true}
	d := New(narrator, nil, nil, "en", testLog())
	d.CancelNarration()
	if narrator.stops != 1 {
		t.Errorf("expected 1 stop, got %d", narrator.stops)
	}

	nilDispatcher := New(nil, nil, nil, "en", testLog())
	nilDispatcher.CancelNarration()
}

func TestDispatcher_RewardCompletion(t *testing.T) {
	rewarder := &fakeRewarder{}
	d := New(nil, rewarder, nil, "en", testLog())
	d.RewardCompletion("riyadh-heritage", "riyadh-heritage-finisher")
	if len(rewarder.tours) != 1 || rewarder.tours[0] != "riyadh-heritage" {
		t.Errorf("unexpected reward calls: %v", rewarder.tours)
	}

	nilDispatcher := New(nil, nil, nil, "en", testLog())
	nilDispatcher.RewardCompletion("riyadh-heritage", "riyadh-heritage-finisher")
}

func TestDispatcher_OpenDirections(t *testing.T) {
	navigator := &fakeNavigator{}
	d := New(nil, nil, navigator, "en", testLog())
	dest := geo.Coordinate{Lat: 24.6494, Lon: 46.7097}
	if err := d.OpenDirections(nil, dest); err != nil {
		t.Fatalf("failed to open directions: %s", err)
	}
	if navigator.dest != dest {
		t.Errorf("expected destination %v, got %v", dest, navigator.dest)
	}

	nilDispatcher := New(nil, nil, nil, "en", testLog())
	if err := nilDispatcher.OpenDirections(nil, dest); err != nil {
		t.Errorf("expected nil navigator to be tolerated, got %s", err)
	}
}

func TestConsoleNarrator(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	narrator := NewConsoleNarrator(buf)
	if err := narrator.Speak(t.Context(), "Welcome to Masmak Fortress.", "en"); err != nil {
		t.Fatalf("failed to speak: %s", err)
	}
	if got := buf.String(); got != "[en] Welcome to Masmak Fortress.\n" {
		t.Errorf("unexpected narration line: %q", got)
	}
	if narrator.IsSpeaking() {
		t.Error("console narration is synchronous, expected not speaking")
	}
	narrator.Stop()
}

func TestConsoleNavigator(t *testing.T) {
	t.Run("destination only", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		navigator := NewConsoleNavigator(buf)
		if err := navigator.OpenDirections(nil, geo.Coordinate{Lat: 24.6494, Lon: 46.7097}); err != nil {
			t.Fatalf("failed to open directions: %s", err)
		}
		got := buf.String()
		if !strings.Contains(got, "mlat=24.649400") || !strings.Contains(got, "mlon=46.709700") {
			t.Errorf("unexpected link: %q", got)
		}
	})
	t.Run("with origin a walking route is linked", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		navigator := NewConsoleNavigator(buf)
		origin := &geo.Coordinate{Lat: 24.631209, Lon: 46.713231}
		if err := navigator.OpenDirections(origin, geo.Coordinate{Lat: 24.6494, Lon: 46.7097}); err != nil {
			t.Fatalf("failed to open directions: %s", err)
		}
		got := buf.String()
		if !strings.Contains(got, "directions") || !strings.Contains(got, "fossgis_osrm_foot") {
			t.Errorf("unexpected link: %q", got)
		}
	})
}
