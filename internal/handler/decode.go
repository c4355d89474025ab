package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// Request bodies are decoded leniently: form-style clients send ids, ages and
// dates as strings or numbers, travellers as an array or as an object keyed
// by position, and flags as booleans, "1" or "true". Whatever decodes is
// handed to the service, which reports rule violations itself.

// quoteRequest is the body of POST /quotes and POST /quotes/preview.
type quoteRequest struct {
	Travellers     travellerList `json:"travellers"`
	StartDate      flexString    `json:"start_date"`
	EndDate        flexString    `json:"end_date"`
	DestinationIDs flexList      `json:"destination_ids"`
	TripTypeID     flexString    `json:"trip_type_id"`
	ExcessID       flexString    `json:"excess_id"`
	CoverID        flexString    `json:"cover_id"`
	Cruise         flexBool      `json:"cruise"`
	Snow           flexBool      `json:"snow"`
	SnowStartDate  flexString    `json:"snow_start_date"`
	SnowEndDate    flexString    `json:"snow_end_date"`
}

func (q quoteRequest) submission() domain.QuoteSubmission {
	travellers := make([]domain.TravellerInput, len(q.Travellers))
	for i, t := range q.Travellers {
		travellers[i] = domain.TravellerInput{Age: string(t.Age)}
	}
	ids := make([]string, len(q.DestinationIDs))
	for i, id := range q.DestinationIDs {
		ids[i] = string(id)
	}
	return domain.QuoteSubmission{
		Travellers:     travellers,
		StartDate:      string(q.StartDate),
		EndDate:        string(q.EndDate),
		DestinationIDs: ids,
		TripTypeID:     string(q.TripTypeID),
		ExcessID:       string(q.ExcessID),
		CoverID:        string(q.CoverID),
		Cruise:         bool(q.Cruise),
		Snow:           bool(q.Snow),
		SnowStartDate:  string(q.SnowStartDate),
		SnowEndDate:    string(q.SnowEndDate),
	}
}

// quotePatchRequest is the body of PATCH /quotes/{id}. Absent fields are left
// unchanged; null or "" clears a snow date or the cover.
type quotePatchRequest struct {
	Cruise        optional[flexBool]   `json:"cruise"`
	Snow          optional[flexBool]   `json:"snow"`
	SnowStartDate optional[flexString] `json:"snow_start_date"`
	SnowEndDate   optional[flexString] `json:"snow_end_date"`
	CoverID       optional[flexString] `json:"cover_id"`
}

func (p quotePatchRequest) update() domain.QuoteUpdate {
	var u domain.QuoteUpdate
	if p.Cruise.Set {
		v := bool(p.Cruise.Value)
		u.Cruise = &v
	}
	if p.Snow.Set {
		v := bool(p.Snow.Value)
		u.Snow = &v
	}
	if p.SnowStartDate.Set {
		v := string(p.SnowStartDate.Value)
		u.SnowStartDate = &v
	}
	if p.SnowEndDate.Set {
		v := string(p.SnowEndDate.Value)
		u.SnowEndDate = &v
	}
	if p.CoverID.Set {
		v := string(p.CoverID.Value)
		u.CoverID = &v
	}
	return u
}

// decodeBody reads r's JSON body into dst. Malformed or missing bodies wrap
// errBadRequest; an oversize body surfaces the *http.MaxBytesError.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is required", errBadRequest)
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: request body is required", errBadRequest)
	default:
		return fmt.Errorf("%w: malformed JSON: %v", errBadRequest, err)
	}
}

// flexString accepts a JSON string or number. null decodes as "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	v, err := decodeScalar(b)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = flexString(x)
	case json.Number:
		*f = flexString(x.String())
	default:
		return fmt.Errorf("expected a string or number, got %s", b)
	}
	return nil
}

// flexBool is true only for true, 1, "1" and "true". Every other value,
// including null, is false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	v, err := decodeScalar(b)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*f = flexBool(x)
	case string:
		*f = x == "1" || x == "true"
	case json.Number:
		*f = x.String() == "1"
	default:
		*f = false
	}
	return nil
}

// flexList accepts an array of strings or numbers, or a single one.
type flexList []flexString

func (l *flexList) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []flexString
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var one flexString
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = flexList{one}
	return nil
}

// travellerRecord is one submitted traveller.
type travellerRecord struct {
	Age flexString `json:"age"`
}

// travellerList accepts an array of traveller records or an object whose
// values are traveller records, taken in document order. null entries are
// skipped.
type travellerList []travellerRecord

func (l *travellerList) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	var out travellerList
	switch tok {
	case nil:
		*l = nil
		return nil
	case json.Delim('['):
		for dec.More() {
			if out, err = out.appendNext(dec); err != nil {
				return err
			}
		}
	case json.Delim('{'):
		for dec.More() {
			// The key only carries the position.
			if _, err := dec.Token(); err != nil {
				return err
			}
			if out, err = out.appendNext(dec); err != nil {
				return err
			}
		}
	default:
		return errors.New("travellers must be an array or an object")
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

func (l travellerList) appendNext(dec *json.Decoder) (travellerList, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return l, nil
	}
	var t travellerRecord
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("traveller %d: %w", len(l)+1, err)
	}
	return append(l, t), nil
}

// optional records whether a field was present in the body at all, so a
// PATCH can tell "absent" from null.
type optional[T any] struct {
	Set   bool
	Value T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

func decodeScalar(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
