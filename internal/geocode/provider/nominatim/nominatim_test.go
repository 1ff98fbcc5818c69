// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/http"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
)

const (
	fortressExpected = "Masmak Fortress, Al Imam Turki Ibn Abdullah Ibn Muhammad Street, Ad Dirah, " +
		"Riyadh, Riyadh Region, 12634, Saudi Arabia"
	fortressFile  = "../../../../testdata/nominatim_riyadh.json"
	townFile      = "../../../../testdata/nominatim_diriyah.json"
	brokenLatFile = "../../../../testdata/nominatim_riyadh_brokenlat.json"
	searchFile    = "../../../../testdata/nominatim_search_masmak.json"
	emptySearch   = "../../../../testdata/nominatim_search_empty.json"
)

var fortressCoords = geo.Coordinate{Lat: 24.631209, Lon: 46.713231}

type mockRoundTripper struct {
	fn func(req *stdhttp.Request) (*stdhttp.Response, error)
}

func (m mockRoundTripper) RoundTrip(req *stdhttp.Request) (*stdhttp.Response, error) {
	return m.fn(req)
}

func testCoder(t *testing.T) *Nominatim {
	t.Helper()
	log := logger.NewLogger(slog.LevelError, io.Discard)
	return New(http.New(log), language.English)
}

func testCoderWithFile(t *testing.T, file string) *Nominatim {
	t.Helper()
	coder := testCoder(t)
	coder.http.Transport = mockRoundTripper{fn: func(_ *stdhttp.Request) (*stdhttp.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &stdhttp.Response{
			StatusCode: 200,
			Body:       data,
			Header:     make(stdhttp.Header),
		}, nil
	}}
	return coder
}

func TestNew(t *testing.T) {
	coder := testCoder(t)
	if coder == nil {
		t.Fatal("expected a non-nil geocoder")
	}
	if coder.Name() != name {
		t.Errorf("expected provider name to be %q, got %q", name, coder.Name())
	}
}

func TestNominatim_Reverse(t *testing.T) {
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		coder := testCoderWithFile(t, fortressFile)
		addr, err := coder.Reverse(t.Context(), fortressCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if !strings.EqualFold(addr.DisplayName, fortressExpected) {
			t.Errorf("expected address to be %q, got %q", fortressExpected, addr.DisplayName)
		}
		if addr.City != "Riyadh" {
			t.Errorf("expected city Riyadh, got %q", addr.City)
		}
		if addr.Suburb != "Ad Dirah" {
			t.Errorf("expected suburb Ad Dirah, got %q", addr.Suburb)
		}
		if addr.Latitude != 24.631209 {
			t.Errorf("expected latitude 24.631209, got %f", addr.Latitude)
		}
	})
	t.Run("town falls back to city", func(t *testing.T) {
		coder := testCoderWithFile(t, townFile)
		addr, err := coder.Reverse(t.Context(), geo.Coordinate{Lat: 24.734394, Lon: 46.572361})
		if err != nil {
			t.Fatal(err)
		}
		if addr.City != "Diriyah" {
			t.Errorf("expected town to fill city, got %q", addr.City)
		}
	})
	t.Run("broken latitude fails", func(t *testing.T) {
		coder := testCoderWithFile(t, brokenLatFile)
		if _, err := coder.Reverse(t.Context(), fortressCoords); err == nil {
			t.Fatal("expected reverse geocoding to fail")
		}
	})
	t.Run("transport failure is wrapped", func(t *testing.T) {
		coder := testCoder(t)
		coder.http.Transport = mockRoundTripper{fn: func(_ *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("connection refused")
		}}
		_, err := coder.Reverse(t.Context(), fortressCoords)
		if err == nil {
			t.Fatal("expected reverse geocoding to fail")
		}
		if !strings.Contains(err.Error(), "failed to fetch reverse address details") {
			t.Errorf("unexpected error: %s", err)
		}
	})
	t.Run("requested language is sent", func(t *testing.T) {
		coder := testCoder(t)
		coder.lang = language.Arabic
		var gotLang string
		coder.http.Transport = mockRoundTripper{fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotLang = req.URL.Query().Get("accept-language")
			data, err := os.Open(fortressFile)
			if err != nil {
				t.Fatalf("failed to open JSON response file: %s", err)
			}
			return &stdhttp.Response{StatusCode: 200, Body: data, Header: make(stdhttp.Header)}, nil
		}}
		if _, err := coder.Reverse(t.Context(), fortressCoords); err != nil {
			t.Fatal(err)
		}
		if gotLang != "ar" {
			t.Errorf("expected accept-language ar, got %q", gotLang)
		}
	})
}

func TestNominatim_Search(t *testing.T) {
	t.Run("search returns the first match", func(t *testing.T) {
		coder := testCoderWithFile(t, searchFile)
		loc, err := coder.Search(t.Context(), "Masmak Fortress")
		if err != nil {
			t.Fatal(err)
		}
		if !loc.Found {
			t.Fatal("expected a search hit")
		}
		if loc.Lat != 24.631209 || loc.Lon != 46.713231 {
			t.Errorf("unexpected coordinates: %f,%f", loc.Lat, loc.Lon)
		}
	})
	t.Run("no results is not an error", func(t *testing.T) {
		coder := testCoderWithFile(t, emptySearch)
		loc, err := coder.Search(t.Context(), "nowhere at all")
		if err != nil {
			t.Fatal(err)
		}
		if loc.Found {
			t.Error("expected no search hit")
		}
	})
}
