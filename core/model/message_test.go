package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTimestampNaiveISO8601(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2024-01-01T00:00:00"`), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v got %v", want, ts.Time)
	}
}

func TestTimestampMicroseconds(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2024-01-01T12:30:45.123456"`), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ts.Nanosecond() != 123456000 {
		t.Fatalf("fraction lost: %v", ts.Time)
	}
}

func TestTimestampRFC3339RoundTrip(t *testing.T) {
	in := Timestamp{time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Timestamp
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Equal(in.Time) {
		t.Fatalf("round trip mismatch: %v != %v", out.Time, in.Time)
	}
}

func TestTimestampInvalid(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeCAM(t *testing.T) {
	payload := []byte(`{"vehicle_id":"V001","timestamp":"2024-01-01T00:00:00","position":{"latitude":48.1,"longitude":11.5},"speed":50,"heading":90,"status":"normal"}`)
	m, err := DecodeCAM(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.VehicleID != "V001" || m.Position.Latitude != 48.1 || m.Speed != 50 {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestDecodeCAMMissingID(t *testing.T) {
	_, err := DecodeCAM([]byte(`{"timestamp":"2024-01-01T00:00:00"}`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload got %v", err)
	}
}

func TestDecodeCAMInvalidJSON(t *testing.T) {
	_, err := DecodeCAM([]byte(`{`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload got %v", err)
	}
}

func TestDecodeV2ILegacyStateKey(t *testing.T) {
	payload := []byte(`{"type":"V2I","infrastructure_id":"TL001","timestamp":"2024-01-01T00:00:00","position":{"lat":48.1351,"lon":11.582},"data":{"traffic_light_state":"red","remaining_time":12}}`)
	m, err := DecodeV2I(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Data.State != "red" || m.Data.RemainingTime != 12 {
		t.Fatalf("legacy key not normalized: %+v", m.Data)
	}
}

func TestDecodeV2ICanonicalStateKey(t *testing.T) {
	payload := []byte(`{"infrastructure_id":"TL002","timestamp":"2024-01-01T00:00:00","data":{"state":"green","remaining_time":5}}`)
	m, err := DecodeV2I(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Data.State != "green" {
		t.Fatalf("expected green got %q", m.Data.State)
	}
}

func TestDecodeDENMSeverity(t *testing.T) {
	payload := []byte(`{"type":"DENM","event_id":"abc123","timestamp":"2024-01-01T00:00:00","position":{"latitude":48.1,"longitude":11.5},"event_type":"accident","severity":"catastrophic","duration":600,"radius":500}`)
	if _, err := DecodeDENM(payload); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected severity rejection got %v", err)
	}
}

func TestDecodeDENMValid(t *testing.T) {
	payload := []byte(`{"type":"DENM","event_id":"abc123","timestamp":"2024-01-01T00:00:00","position":{"latitude":48.1,"longitude":11.5},"event_type":"accident","severity":"high","duration":600,"radius":500}`)
	m, err := DecodeDENM(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.EventType != "accident" || m.Severity != SeverityHigh {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestDecodeEmergencyPayloadFreeForm(t *testing.T) {
	m, err := DecodeEmergencyPayload([]byte(`{"reason":"airbag_deployed","speed":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["reason"] != "airbag_deployed" {
		t.Fatalf("unexpected payload: %v", m)
	}
	if _, err := DecodeEmergencyPayload([]byte(`not json`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload got %v", err)
	}
}
