// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package nominatim implements a geocoder backed by the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geocode"
	"github.com/ghaith435/DrobSaudia-sub001/internal/http"
)

const (
	APISearchEndpoint  = "https://nominatim.openstreetmap.org/search"
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

type reverseResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

type searchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type address struct {
	HouseNumber  string `json:"house_number"`
	Road         string `json:"road"`
	Suburb       string `json:"suburb"`
	Municipality string `json:"municipality"`
	CityDistrict string `json:"city_district"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Reverse(ctx context.Context, coords geo.Coordinate) (geocode.Address, error) {
	var result reverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", coords.Lat))
	query.Set("lon", fmt.Sprintf("%f", coords.Lon))
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, APIReverseEndpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}

	resolved := geocode.Address{
		AddressFound: result.DisplayName != "",
		DisplayName:  result.DisplayName,
		Country:      result.Address.Country,
		State:        result.Address.State,
		Municipality: result.Address.Municipality,
		CityDistrict: result.Address.CityDistrict,
		Postcode:     result.Address.Postcode,
		City:         result.Address.City,
		Suburb:       result.Address.Suburb,
		Street:       result.Address.Road,
		HouseNumber:  result.Address.HouseNumber,
	}
	if resolved.City == "" && result.Address.Town != "" {
		resolved.City = result.Address.Town
	}
	if resolved.City == "" && result.Address.Village != "" {
		resolved.City = result.Address.Village
	}
	if result.APILat != "" {
		resolved.Latitude, err = strconv.ParseFloat(result.APILat, 64)
		if err != nil {
			return geocode.Address{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
		}
	}
	if result.APILon != "" {
		resolved.Longitude, err = strconv.ParseFloat(result.APILon, 64)
		if err != nil {
			return geocode.Address{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
		}
	}

	return resolved, nil
}

func (n *Nominatim) Search(ctx context.Context, searchTerm string) (geocode.Location, error) {
	var result []searchResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", searchTerm)
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, APISearchEndpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.Location{}, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if len(result) < 1 {
		return geocode.Location{}, nil
	}

	loc := geocode.Location{Found: true}
	loc.Lat, err = strconv.ParseFloat(result[0].APILat, 64)
	if err != nil {
		return geocode.Location{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	loc.Lon, err = strconv.ParseFloat(result[0].APILon, 64)
	if err != nil {
		return geocode.Location{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return loc, nil
}
