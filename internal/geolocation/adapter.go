package geolocation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// Field aliases seen across geolocation APIs, in order of preference.
var (
	ipPaths       = []string{"ip", "query", "ip_address"}
	countryPaths  = []string{"country", "country_name"}
	regionPaths   = []string{"regionName", "region_name", "region"} // ip-api "region" is a code
	cityPaths     = []string{"city"}
	latPaths      = []string{"lat", "latitude"}
	lngPaths      = []string{"lng", "lon", "longitude"}
	timezonePaths = []string{"timezone", "time_zone", "utc_offset"}
	ispPaths      = []string{"isp", "as.name", "org"}
)

var resultValidator = validator.New()

// ParseResult maps a geolocation API body into the canonical LookupResult.
//
// Accepted shapes:
//   - ipify v2: {"ip", "location": {"country","region","city","lat","lng","timezone"}, "isp"}
//   - the same with "lon" or "latitude"/"longitude" inside "location"
//   - flat bodies such as ip-api: {"query","country","regionName","city","lat","lon","timezone","isp"}
//
// A body with "status": "fail", missing coordinates, or coordinates out of
// range is rejected with ErrMalformedResponse.
func ParseResult(body []byte) (*models.LookupResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	if status := root.Get("status"); status.Exists() && strings.EqualFold(status.String(), "fail") {
		reason := strings.TrimSpace(root.Get("message").String())
		if reason == "" {
			reason = "unknown"
		}
		return nil, fmt.Errorf("%w: API reported failure: %s", ErrMalformedResponse, reason)
	}

	// Location fields are nested under "location" in the canonical shape and
	// sit at the top level in flat shapes.
	loc := root
	if nested := root.Get("location"); nested.IsObject() {
		loc = nested
	}

	lat := first(loc, latPaths)
	lng := first(loc, lngPaths)
	if !isNumber(lat) || !isNumber(lng) {
		return nil, fmt.Errorf("%w: missing coordinates", ErrMalformedResponse)
	}

	result := &models.LookupResult{
		IP: first(root, ipPaths).String(),
		Location: models.Location{
			Country:  first(loc, countryPaths).String(),
			Region:   first(loc, regionPaths).String(),
			City:     first(loc, cityPaths).String(),
			Lat:      lat.Float(),
			Lng:      lng.Float(),
			Timezone: first(loc, timezonePaths).String(),
		},
		ISP: first(root, ispPaths).String(),
	}

	if err := resultValidator.Struct(result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return result, nil
}

// first returns the first alias that exists and is not null
func first(obj gjson.Result, paths []string) gjson.Result {
	for _, path := range paths {
		if value := obj.Get(path); value.Exists() && value.Type != gjson.Null {
			return value
		}
	}
	return gjson.Result{}
}

// isNumber accepts JSON numbers and numeric strings ("48.85")
func isNumber(value gjson.Result) bool {
	switch value.Type {
	case gjson.Number:
		return true
	case gjson.String:
		_, err := strconv.ParseFloat(value.Str, 64)
		return err == nil
	default:
		return false
	}
}
